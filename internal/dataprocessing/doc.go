// Package dataprocessing turns the three hospital unit tables into a single
// cleaned table and answers the fixed questions asked of it.
//
// # Pipeline
//
//  1. Loader reads acute, maternity and athletics sources (CSV or XLSX).
//  2. BuildUnifiedTable renames the unit and gender columns, stacks the rows,
//     drops the stray index column and fully empty rows, then normalizes
//     gender codes and fills defaults.
//  3. Analyzer answers the questions. Every answer comes from the unified table
//     except the per-unit age spread, which reads the raw sources.
//  4. BuildChartInputs extracts the series the report charts are drawn from.
//
// No step modifies its input; each returns a new table or value.
//
// # Usage
//
//	src, err := dataprocessing.NewLoader(logger).LoadSources(ctx, paths)
//	if err != nil {
//	    return err
//	}
//	unified, stats, err := dataprocessing.BuildUnifiedTable(src)
//	if err != nil {
//	    return err
//	}
//	answers := dataprocessing.NewAnalyzer(logger, tracer).Answer(ctx, unified, src)
//
// Aggregates over an empty group are reported as undefined rather than zero.
package dataprocessing
