/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/quarrydata/schemamapper"
	"github.com/quarrydata/schemamapper/internal/supporting"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	"github.com/quarrydata/schemamapper/internal/version"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/urfave/cli"
)

var (
	configurationFile string
	verbose           bool
	withCaller        bool
	logToStdErr       bool

	config *spiconfig.Config
	mapper *schemamapper.Mapper
)

func main() {
	app := &cli.App{
		Name:    version.BinName,
		Usage:   "Schema inference and warehouse DDL generation for tabular data",
		Version: fmt.Sprintf("%s (git revision %s; branch %s)", version.Version, version.CommitHash, version.Branch),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config,c",
				Value:       "",
				Usage:       "Load configuration from `FILE`",
				Destination: &configurationFile,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Show verbose output",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "caller",
				Usage:       "Collect caller information for log messages",
				Destination: &withCaller,
			},
			&cli.BoolFlag{
				Name:        "log-to-stderr",
				Usage:       "Redirects logging output to stderr, necessary when writing results to StdOut",
				Destination: &logToStdErr,
			},
		},
		Before: initialize,
		Commands: []cli.Command{
			inferCommand(),
			ddlCommand(),
			incrementalCommand(),
			detectKeysCommand(),
			validateCommand(),
			dictionaryCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func initialize(*cli.Context) error {
	logging.WithCaller = withCaller
	logging.WithVerbose = verbose

	config = spiconfig.Default()

	// No configuration file set? Try env variable!
	if configurationFile == "" {
		if cf, present := os.LookupEnv("SCHEMAMAPPER_CONFIG"); present {
			fmt.Fprintf(os.Stderr, "Using configuration file from environment variable\n")
			configurationFile = cf
		}
	}

	if configurationFile != "" {
		f, err := os.Open(configurationFile)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be opened: %v\n", err), 3)
		}
		defer f.Close()

		b, err := io.ReadAll(f)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be read: %v\n", err), 4)
		}

		tomlConfig := filepath.Ext(strings.ToLower(configurationFile)) == ".toml"
		if err := spiconfig.Unmarshall(b, config, tomlConfig); err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be decoded: %v\n", err), 5)
		}
	}

	if err := logging.InitializeLogging(config, logToStdErr); err != nil {
		return err
	}

	m, err := schemamapper.NewMapper(config)
	if err != nil {
		return supporting.AdaptError(err, 6)
	}
	mapper = m
	return nil
}

func inferCommand() cli.Command {
	return cli.Command{
		Name:  "infer",
		Usage: "Infer a canonical schema from a delimited sample file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file,f", Usage: "Sample `FILE` (CSV with header row)"},
			&cli.StringFlag{Name: "table,t", Usage: "Target table `NAME` (defaults to the file name)"},
			&cli.StringFlag{Name: "dataset,d", Usage: "Dataset / schema name"},
			&cli.StringFlag{Name: "project", Usage: "Project id (BigQuery)"},
			&cli.BoolFlag{Name: "json", Usage: "Write the schema document as JSON instead of YAML"},
		},
		Action: func(ctx *cli.Context) error {
			canonicalSchema, err := inferredSchema(ctx)
			if err != nil {
				return supporting.AdaptError(err, 10)
			}

			marshalled, err := schema.MarshalDocument(
				canonicalSchema.ToDocument(), ctx.Bool("json"),
			)
			if err != nil {
				return supporting.AdaptError(err, 11)
			}
			fmt.Println(string(marshalled))
			return nil
		},
	}
}

func ddlCommand() cli.Command {
	return cli.Command{
		Name:  "ddl",
		Usage: "Render a CREATE TABLE statement for a platform",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schema,s", Usage: "Schema document `FILE` (YAML or JSON)"},
			&cli.StringFlag{Name: "platform,p", Usage: "Target `PLATFORM`"},
			&cli.BoolFlag{Name: "cli-create", Usage: "Also print the platform's table creation command"},
			&cli.StringFlag{Name: "cli-load", Usage: "Also print the load command for the given data `REFERENCE`"},
			&cli.StringFlag{Name: "artifact", Usage: "Write the platform schema artifact to `FILE`"},
		},
		Action: func(ctx *cli.Context) error {
			platform, err := spiconfig.ParsePlatformType(ctx.String("platform"))
			if err != nil {
				return supporting.AdaptError(err, 10)
			}
			canonicalSchema, err := loadSchemaDocument(ctx.String("schema"))
			if err != nil {
				return supporting.AdaptError(err, 11)
			}

			r, err := mapper.Renderer(platform, canonicalSchema)
			if err != nil {
				return supporting.AdaptError(err, 12)
			}

			ddl, err := r.ToDDL(canonicalSchema)
			if err != nil {
				return supporting.AdaptError(err, 13)
			}
			fmt.Println(ddl)

			if ctx.Bool("cli-create") {
				command, err := r.ToCliCreate(canonicalSchema)
				if err != nil {
					return supporting.AdaptError(err, 14)
				}
				fmt.Println(command)
			}
			if dataReference := ctx.String("cli-load"); dataReference != "" {
				command, err := r.ToCliLoad(canonicalSchema, dataReference)
				if err != nil {
					return supporting.AdaptError(err, 15)
				}
				fmt.Println(command)
			}
			if artifactFile := ctx.String("artifact"); artifactFile != "" {
				artifact, err := r.ToSchemaArtifact(canonicalSchema)
				if err != nil {
					return supporting.AdaptError(err, 16)
				}
				if err := os.WriteFile(artifactFile, artifact, 0o644); err != nil {
					return supporting.AdaptError(err, 17)
				}
			}
			return nil
		},
	}
}

func incrementalCommand() cli.Command {
	return cli.Command{
		Name:  "incremental",
		Usage: "Generate an incremental load script for a platform",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schema,s", Usage: "Schema document `FILE` (YAML or JSON)"},
			&cli.StringFlag{Name: "platform,p", Usage: "Target `PLATFORM`"},
			&cli.StringFlag{Name: "pattern", Usage: "Load `PATTERN`"},
			&cli.StringFlag{Name: "keys", Usage: "Comma-separated primary key `COLUMNS`"},
			&cli.StringFlag{Name: "merge-strategy", Usage: "Merge `STRATEGY` for matched rows"},
			&cli.StringFlag{Name: "update-columns", Usage: "Comma-separated `COLUMNS` for UPDATE_SELECTIVE"},
			&cli.StringFlag{Name: "incremental-column", Usage: "High watermark `COLUMN` for INCREMENTAL_TIMESTAMP"},
			&cli.StringFlag{Name: "lookback", Usage: "Lookback `WINDOW` (Go duration) for INCREMENTAL_TIMESTAMP"},
			&cli.StringFlag{Name: "hash-columns", Usage: "Comma-separated change detection `COLUMNS` for SCD_TYPE2"},
			&cli.StringFlag{Name: "effective-column", Usage: "Effective date `COLUMN` for SCD_TYPE2"},
			&cli.StringFlag{Name: "expiration-column", Usage: "Expiration date `COLUMN` for SCD_TYPE2"},
			&cli.StringFlag{Name: "current-column", Usage: "Current flag `COLUMN` for SCD_TYPE2"},
			&cli.StringFlag{Name: "operation-column", Usage: "Operation marker `COLUMN` for CDC_MERGE"},
			&cli.StringFlag{Name: "snapshot-version", Usage: "Version `TAG` for SNAPSHOT"},
			&cli.StringFlag{Name: "staging-table", Usage: "Staging table `NAME` override"},
		},
		Action: func(ctx *cli.Context) error {
			platform, err := spiconfig.ParsePlatformType(ctx.String("platform"))
			if err != nil {
				return supporting.AdaptError(err, 10)
			}
			canonicalSchema, err := loadSchemaDocument(ctx.String("schema"))
			if err != nil {
				return supporting.AdaptError(err, 11)
			}
			incrementalConfig, err := incrementalConfigFromFlags(ctx)
			if err != nil {
				return supporting.AdaptError(err, 12)
			}

			generator, err := mapper.IncrementalGenerator(platform)
			if err != nil {
				return supporting.AdaptError(err, 13)
			}
			script, err := generator.Generate(canonicalSchema, incrementalConfig)
			if err != nil {
				return supporting.AdaptError(err, 14)
			}
			fmt.Println(script.Render())
			return nil
		},
	}
}

func detectKeysCommand() cli.Command {
	return cli.Command{
		Name:  "detect-keys",
		Usage: "Detect primary key candidates in a delimited sample file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file,f", Usage: "Sample `FILE` (CSV with header row)"},
			&cli.StringFlag{Name: "table,t", Usage: "Target table `NAME` (defaults to the file name)"},
		},
		Action: func(ctx *cli.Context) error {
			smp, err := readSample(ctx.String("file"))
			if err != nil {
				return supporting.AdaptError(err, 10)
			}
			canonicalSchema, err := inferredSchemaOf(ctx, smp)
			if err != nil {
				return supporting.AdaptError(err, 11)
			}

			candidates, err := mapper.DetectKeys(smp, canonicalSchema)
			if err != nil {
				return supporting.AdaptError(err, 12)
			}
			if len(candidates) == 0 {
				fmt.Println("No key candidates found")
				return nil
			}
			for _, candidate := range candidates {
				fmt.Printf(
					"%s: confidence %.3f (%s)\n",
					candidate.String(), candidate.Confidence, candidate.Reasoning,
				)
			}
			return nil
		},
	}
}

func validateCommand() cli.Command {
	return cli.Command{
		Name:  "validate",
		Usage: "Evaluate the configured schema rules against a sample file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file,f", Usage: "Sample `FILE` (CSV with header row)"},
			&cli.StringFlag{Name: "table,t", Usage: "Target table `NAME` (defaults to the file name)"},
		},
		Action: func(ctx *cli.Context) error {
			smp, err := readSample(ctx.String("file"))
			if err != nil {
				return supporting.AdaptError(err, 10)
			}
			canonicalSchema, err := inferredSchemaOf(ctx, smp)
			if err != nil {
				return supporting.AdaptError(err, 11)
			}

			violations, err := mapper.EvaluateRules(smp, canonicalSchema, nil)
			if err != nil {
				return supporting.AdaptError(err, 12)
			}
			if len(violations) == 0 {
				fmt.Println("All rules passed")
				return nil
			}
			for _, violation := range violations {
				fmt.Println(violation.String())
			}
			return cli.NewExitError(
				fmt.Sprintf("%d rule violation(s)", len(violations)), 1,
			)
		},
	}
}

func dictionaryCommand() cli.Command {
	return cli.Command{
		Name:  "dictionary",
		Usage: "Render a markdown data dictionary of a schema document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schema,s", Usage: "Schema document `FILE` (YAML or JSON)"},
		},
		Action: func(ctx *cli.Context) error {
			canonicalSchema, err := loadSchemaDocument(ctx.String("schema"))
			if err != nil {
				return supporting.AdaptError(err, 10)
			}
			fmt.Println(mapper.DataDictionary(canonicalSchema))
			return nil
		},
	}
}

func inferredSchema(ctx *cli.Context) (*schema.CanonicalSchema, error) {
	smp, err := readSample(ctx.String("file"))
	if err != nil {
		return nil, err
	}
	return inferredSchemaOf(ctx, smp)
}

func inferredSchemaOf(
	ctx *cli.Context, smp sample.Sample,
) (*schema.CanonicalSchema, error) {

	tableName := ctx.String("table")
	if tableName == "" {
		base := filepath.Base(ctx.String("file"))
		tableName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	options := make([]schema.SchemaOption, 0)
	if datasetName := ctx.String("dataset"); datasetName != "" {
		options = append(options, schema.WithDatasetName(datasetName))
	}
	if projectId := ctx.String("project"); projectId != "" {
		options = append(options, schema.WithProjectId(projectId))
	}
	return mapper.InferSchema(smp, tableName, options...)
}

func readSample(path string) (sample.Sample, error) {
	if path == "" {
		return nil, errors.Errorf("no sample file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("file '%s' has no header row", path)
	}
	return sample.FromRows(records[0], records[1:])
}

func loadSchemaDocument(path string) (*schema.CanonicalSchema, error) {
	if path == "" {
		return nil, errors.Errorf("no schema document given")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	asJson := filepath.Ext(strings.ToLower(path)) == ".json"
	document, err := schema.UnmarshalDocument(content, asJson)
	if err != nil {
		return nil, err
	}
	return schema.FromDocument(document)
}

func incrementalConfigFromFlags(
	ctx *cli.Context,
) (incremental.Config, error) {

	pattern, err := incremental.ParseLoadPattern(ctx.String("pattern"))
	if err != nil {
		return incremental.Config{}, err
	}

	incrementalConfig := incremental.Config{
		LoadPattern: pattern,
		PrimaryKeys: splitColumns(ctx.String("keys")),
		HashColumns: splitColumns(ctx.String("hash-columns")),
	}

	if strategy := ctx.String("merge-strategy"); strategy != "" {
		mergeStrategy, err := incremental.ParseMergeStrategy(strategy)
		if err != nil {
			return incremental.Config{}, err
		}
		incrementalConfig.MergeStrategy = mergeStrategy
		incrementalConfig.UpdateColumns = splitColumns(ctx.String("update-columns"))
	}
	if lookback := ctx.String("lookback"); lookback != "" {
		window, err := time.ParseDuration(lookback)
		if err != nil {
			return incremental.Config{}, errors.Wrap(err, 0)
		}
		incrementalConfig.LookbackWindow = &window
	}

	assignIfSet(ctx, "incremental-column", &incrementalConfig.IncrementalColumn)
	assignIfSet(ctx, "effective-column", &incrementalConfig.EffectiveDateColumn)
	assignIfSet(ctx, "expiration-column", &incrementalConfig.ExpirationDateColumn)
	assignIfSet(ctx, "current-column", &incrementalConfig.IsCurrentColumn)
	assignIfSet(ctx, "operation-column", &incrementalConfig.OperationColumn)
	assignIfSet(ctx, "snapshot-version", &incrementalConfig.SnapshotVersion)
	assignIfSet(ctx, "staging-table", &incrementalConfig.StagingTable)

	return incrementalConfig, nil
}

func assignIfSet(
	ctx *cli.Context, flagName string, target **string,
) {

	if value := ctx.String(flagName); value != "" {
		*target = supporting.AddrOf(value)
	}
}

func splitColumns(value string) []string {
	if value == "" {
		return nil
	}
	columns := strings.Split(value, ",")
	for index, column := range columns {
		columns[index] = strings.TrimSpace(column)
	}
	return columns
}
