package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	urfave "github.com/urfave/cli/v2"

	"github.com/clinsight/reop/pkg/schema"
)

var (
	inputFlag = &urfave.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Path to a JSON file mapping field names to integer values",
	}

	setFlag = &urfave.StringSliceFlag{
		Name:    "set",
		Aliases: []string{"s"},
		Usage:   `Set a single field (repeatable, e.g. --set "ASA scores=2")`,
	}

	predictCmd = &urfave.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Run a one-shot risk prediction from field values",
		Action:  cmdPredict,
		Flags: []urfave.Flag{
			inputFlag,
			setFlag,
		},
	}

	schemaCmd = &urfave.Command{
		Name:    "schema",
		Aliases: []string{"s"},
		Usage:   "Print the input field registry (names, bounds, descriptions)",
		Action:  cmdSchema,
	}
)

func cmdPredict(c *urfave.Context) error {
	record, err := readRecord(c)
	if err != nil {
		return err
	}

	cfg := getConfig(c)
	res, err := cfg.Predictor.Predict(record)
	if err != nil {
		return err
	}
	return encode(res)
}

func cmdSchema(_ *urfave.Context) error {
	return encode(schema.Specs())
}

// readRecord assembles the input record from the --input file and any
// --set overrides, in that order.
func readRecord(c *urfave.Context) (map[string]int, error) {
	record := map[string]int{}

	if path := c.String(inputFlag.Name); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		if err := json.Unmarshal(b, &record); err != nil {
			return nil, fmt.Errorf("parsing input file %s: %w", path, err)
		}
	}

	for _, kv := range c.StringSlice(setFlag.Name) {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set value %q, expected name=value", kv)
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid --set value %q: %w", kv, err)
		}
		record[strings.TrimSpace(name)] = n
	}

	if len(record) == 0 {
		return nil, fmt.Errorf("no input values, provide --%s or --%s", inputFlag.Name, setFlag.Name)
	}
	return record, nil
}
