// Package dataprocessing cleans the four school tables and decodes the
// cleaned files into the domain model.
//
// # Architecture
//
// The package is organized into three parts:
//
// 1. Table: reads raw CSV files into header + rows, padding short rows
// 2. Cleaner: applies a Policy to a Table (deduplicate, fill, coerce)
// 3. Pipeline: reads all inputs, cleans them in memory and writes the outputs
//
// # Usage
//
// Running the full cleaning pipeline:
//
//	pipeline := dataprocessing.NewPipeline(paths, logger)
//	report, err := pipeline.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Cleaning a single table in memory:
//
//	cleaned, row, err := dataprocessing.Clean(table, dataprocessing.GradesPolicy)
//
// Loading the cleaned files for the dashboard:
//
//	dataset, err := dataprocessing.ReadCleanDataset(paths)
//
// # Data Flow
//
//	raw CSV → Table → Clean(policy) → cleaned CSV + relatorio_tratamento.csv
//
// # Error Handling
//
// Missing inputs are reported as MISSING_INPUT errors and type failures as
// SCHEMA errors carrying the table, row and column. The pipeline writes
// nothing unless every table was read and cleaned.
package dataprocessing
