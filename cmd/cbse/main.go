// SPDX-License-Identifier: AGPL-3.0

// Command cbse runs every test function in a compiled JobArtifact: `run
// <artifact> --output <result>`, `--worker-mode`, and `--version`. Flag
// parsing is a thin gopkg.in/urfave/cli.v1 shell; all the actual work
// happens in internal/driver.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	"gopkg.in/urfave/cli.v1"

	"github.com/web-ghost-dotcom/cbse/internal/artifact"
	"github.com/web-ghost-dotcom/cbse/internal/attestation"
	"github.com/web-ghost-dotcom/cbse/internal/cbselog"
	"github.com/web-ghost-dotcom/cbse/internal/driver"
	"github.com/web-ghost-dotcom/cbse/internal/report"
)

// version is the engine's own release identifier, stamped into --version
// output and the attestation payload's verifier_version field.
const version = "0.1.0"

var (
	outputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "path to write the result JSON to (defaults to stdout)",
	}
	workerModeFlag = cli.BoolFlag{
		Name:  "worker-mode",
		Usage: "exit with the driver's computed exitcode instead of always exiting 0",
	}
	verboseFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "0-5, mirrors ExecutionConfig.verbosity",
	}
	attestFlag = cli.StringFlag{
		Name:  "attest-key",
		Usage: "hex-encoded secp256k1 private key; if set, a signed attestation is emitted alongside the result",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "cbse"
	app.Usage = "symbolic execution engine for EVM bytecode"
	app.Version = version
	app.Commands = []cli.Command{runCommand}

	if err := app.Run(os.Args); err != nil {
		cbselog.Error(true, "%s", err.Error())
		os.Exit(int(report.Exception))
	}
}

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "run every test_function in a JobArtifact and report verdicts",
	ArgsUsage: "<artifact.json>",
	Flags:     []cli.Flag{outputFlag, workerModeFlag, verboseFlag, attestFlag},
	Action:    runAction,
}

func runAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("cbse run: missing <artifact> path", int(report.Exception))
	}
	path := c.Args().First()

	raw, err := os.ReadFile(path)
	if err != nil {
		cbselog.WarnCode(cbselog.ParsingError, true, err.Error())
		return cli.NewExitError(err.Error(), int(report.Exception))
	}

	art, err := artifact.Unmarshal(raw)
	if err != nil {
		cbselog.WarnCode(cbselog.ParsingError, true, "invalid artifact JSON: "+err.Error())
		return cli.NewExitError(err.Error(), int(report.Exception))
	}

	if v := c.Int(verboseFlag.Name); v > 0 {
		cbselog.Verbose = v
		art.Config.Verbosity = v
	}

	codeByContract, err := decodeBytecodes(art)
	if err != nil {
		return cli.NewExitError(err.Error(), int(report.Exception))
	}

	main := driver.RunArtifact(art, codeByContract)

	if keyHex := c.String(attestFlag.Name); keyHex != "" {
		att, err := signAttestation(art, main, keyHex)
		if err != nil {
			cbselog.WarnCode(cbselog.InternalError, true, "attestation: "+err.Error())
		} else {
			emit(att, c.String(outputFlag.Name)+".attestation.json")
		}
	}

	emit(main, c.String(outputFlag.Name))

	if c.Bool(workerModeFlag.Name) && main.Exitcode != report.Pass {
		return cli.NewExitError("", int(main.Exitcode))
	}
	return nil
}

func decodeBytecodes(art *artifact.JobArtifact) (map[string][]byte, error) {
	out := make(map[string][]byte, len(art.Contracts))
	for _, c := range art.Contracts {
		raw := strings.TrimPrefix(c.BytecodeHex, "0x")
		b, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("contract %s: invalid bytecode_hex: %w", c.Name, err)
		}
		out[c.Name] = b
	}
	return out, nil
}

func emit(v interface{}, path string) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cbselog.WarnCode(cbselog.InternalError, true, err.Error())
		return
	}
	if path == "" {
		fmt.Println(string(b))
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		cbselog.WarnCode(cbselog.InternalError, true, err.Error())
	}
}

func signAttestation(art *artifact.JobArtifact, main report.MainResult, keyHex string) (*attestation.Attestation, error) {
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, err
	}
	priv := new(big.Int).SetBytes(keyBytes)

	bytecodeHash := keccakOfContracts(art)
	specHash := bytecodeHash // single-artifact attestations bind both digests to the same input; see DESIGN.md
	return attestation.Sign(version, bytecodeHash, specHash, main, priv, time.Now())
}

// keccakOfContracts hashes every contract's bytecode in name order, giving a
// stable digest independent of JSON field ordering in the artifact.
func keccakOfContracts(art *artifact.JobArtifact) [32]byte {
	names := make([]string, 0, len(art.Contracts))
	byName := make(map[string]string, len(art.Contracts))
	for _, c := range art.Contracts {
		names = append(names, c.Name)
		byName[c.Name] = c.BytecodeHex
	}
	sort.Strings(names)

	h := sha3.NewLegacyKeccak256()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte(byName[n]))
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}
