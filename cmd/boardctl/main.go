// Package main contains the cli implementation of boardctl. It uses cobra
// package for cli tool implementation.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"board/board"
	"board/engine"
	"board/expr"
	"board/groupby"
	"board/internal/boardindex"
	"board/internal/exprlang"
	"board/internal/partition"
	"board/join"
	"board/projector"
)

type rootFlags struct {
	dsn      string
	cacheDir string
}

type describeFlags struct {
	id string
}

type dumpFlags struct {
	id        string
	offset    int
	count     int
	delimiter string
}

type selectFlags struct {
	id     string
	where  string
	fields string
	output string
}

type groupByFlags struct {
	id     string
	keys   string
	aggs   string
	output string
}

type joinFlags struct {
	rID, sID string
	on       string
	fields   string
	output   string
}

func main() {
	root := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "boardctl",
		Short: "In-memory columnar board inspector and query tool",
	}
	rootCmd.PersistentFlags().StringVar(&root.dsn, "dsn", "", "Database connection string backing partition storage (required)")
	rootCmd.PersistentFlags().StringVar(&root.cacheDir, "cache-dir", ".", "Directory holding partition sidecar files")

	rootCmd.AddCommand(describeCmd(root))
	rootCmd.AddCommand(dumpCmd(root))
	rootCmd.AddCommand(selectCmd(root))
	rootCmd.AddCommand(groupByCmd(root))
	rootCmd.AddCommand(joinCmd(root))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openBoard(ctx context.Context, root *rootFlags, id string) (*board.Board, *partition.Store, error) {
	if root.dsn == "" {
		return nil, nil, fmt.Errorf("--dsn is required")
	}
	store, err := partition.Open(ctx, root.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to partition store: %w", err)
	}
	b, err := partition.ReadFromFile(ctx, store, root.cacheDir, id)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("reading board %q: %w", id, err)
	}
	return b, store, nil
}

func describeCmd(root *rootFlags) *cobra.Command {
	flags := &describeFlags{}
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print a board's schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, store, err := openBoard(cmd.Context(), root, flags.id)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			return b.Describe(os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flags.id, "id", "", "Board id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func dumpCmd(root *rootFlags) *cobra.Command {
	flags := &dumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print a board's rows, comma-delimited by default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, store, err := openBoard(cmd.Context(), root, flags.id)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			b.Dump(os.Stdout, flags.offset, flags.count, flags.delimiter)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.id, "id", "", "Board id (required)")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "First row to print")
	cmd.Flags().IntVar(&flags.count, "count", -1, "Number of rows to print (-1 for all)")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", ",", "Field delimiter")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func selectCmd(root *rootFlags) *cobra.Command {
	flags := &selectFlags{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Filter and project a board's rows into a new board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelect(cmd.Context(), root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.id, "id", "", "Board id (required)")
	cmd.Flags().StringVar(&flags.where, "where", "", "Boolean predicate clause, e.g. \"age >= 18 AND city = 'NY'\"")
	cmd.Flags().StringVarP(&flags.fields, "fields", "f", "*", "Comma-separated projection clause, e.g. \"city, amount * 2 AS doubled\"")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file for the resulting dump (default stdout)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runSelect(ctx context.Context, root *rootFlags, flags *selectFlags) error {
	b, store, err := openBoard(ctx, root, flags.id)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	terms, err := compileProjection(flags.fields)
	if err != nil {
		return fmt.Errorf("compiling projection: %w", err)
	}

	whereTree, err := compileWhere(flags.where)
	if err != nil {
		return fmt.Errorf("compiling where clause: %w", err)
	}

	idx := boardindex.NewRegistry()
	out, err := engine.Select(b, idx, whereTree, terms)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return writeDump(out, flags.output)
}

func groupByCmd(root *rootFlags) *cobra.Command {
	flags := &groupByFlags{}
	cmd := &cobra.Command{
		Use:   "groupby",
		Short: "Aggregate a board's rows by a set of key columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGroupBy(cmd.Context(), root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.id, "id", "", "Board id (required)")
	cmd.Flags().StringVar(&flags.keys, "keys", "", "Comma-separated key column names")
	cmd.Flags().StringVar(&flags.aggs, "aggs", "", "Comma-separated aggregate clause, e.g. \"sum(amount) AS total, cnt(*) AS n\"")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file for the resulting dump (default stdout)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runGroupBy(ctx context.Context, root *rootFlags, flags *groupByFlags) error {
	b, store, err := openBoard(ctx, root, flags.id)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	clauseA, err := compileGroupByClause(flags.keys, flags.aggs)
	if err != nil {
		return fmt.Errorf("compiling group-by clause: %w", err)
	}

	out, err := engine.GroupBy(b, clauseA, passthroughProjection(clauseA), nil)
	if err != nil {
		return fmt.Errorf("groupby: %w", err)
	}
	return writeDump(out, flags.output)
}

func joinCmd(root *rootFlags) *cobra.Command {
	flags := &joinFlags{}
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Sort-merge equi-join two boards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJoin(cmd.Context(), root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.rID, "r", "", "Left board id (required)")
	cmd.Flags().StringVar(&flags.sID, "s", "", "Right board id (required)")
	cmd.Flags().StringVar(&flags.on, "on", "", "Shared join column name (required)")
	cmd.Flags().StringVarP(&flags.fields, "fields", "f", "", "Comma-separated projection clause, qualified with R./S. where ambiguous")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file for the resulting dump (default stdout)")
	_ = cmd.MarkFlagRequired("r")
	_ = cmd.MarkFlagRequired("s")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

func runJoin(ctx context.Context, root *rootFlags, flags *joinFlags) error {
	r, storeR, err := openBoard(ctx, root, flags.rID)
	if err != nil {
		return err
	}
	defer func() { _ = storeR.Close() }()

	s, storeS, err := openBoard(ctx, root, flags.sID)
	if err != nil {
		return err
	}
	defer func() { _ = storeS.Close() }()

	projections := compileJoinProjection(flags.fields)

	out, err := engine.Join(r, s, flags.on, nil, nil, projections)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	return writeDump(out, flags.output)
}

func writeDump(b *board.Board, outFile string) error {
	if outFile == "" {
		b.Dump(os.Stdout, 0, -1, ",")
		return nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = f.Close() }()
	b.Dump(f, 0, -1, ",")
	return nil
}

func compileWhere(clause string) (*expr.Tree, error) {
	if strings.TrimSpace(clause) == "" {
		return nil, nil
	}
	return exprlang.New().CompileWhere(clause)
}

func compileProjection(clause string) ([]projector.Term, error) {
	terms, err := exprlang.New().CompileTerms(clause)
	if err != nil {
		return nil, err
	}
	out := make([]projector.Term, 0, len(terms))
	for _, t := range terms {
		out = append(out, projector.Term{Name: t.Name, Expr: t.Tree})
	}
	return out, nil
}

// compileJoinProjection parses a flat "R.region, name" clause into
// join.Projection values; a bare name is left unqualified so
// join.resolveProjection's ambiguity rule (prefer R) applies.
func compileJoinProjection(clause string) []join.Projection {
	if strings.TrimSpace(clause) == "" {
		return nil
	}
	parts := strings.Split(clause, ",")
	out := make([]join.Projection, 0, len(parts))
	for _, p := range parts {
		ref := strings.TrimSpace(p)
		if ref == "" {
			continue
		}
		name := ref
		if i := strings.LastIndexByte(ref, '.'); i >= 0 {
			name = ref[i+1:]
		}
		out = append(out, join.Projection{Name: name, Ref: ref})
	}
	return out
}

// aggNames maps the function names exprlang's walker produces for CNT/SUM/
// etc. calls onto groupby.Agg.
var aggNames = map[string]groupby.Agg{
	"cnt":      groupby.AggCount,
	"count":    groupby.AggCount,
	"sum":      groupby.AggSum,
	"min":      groupby.AggMin,
	"max":      groupby.AggMax,
	"avg":      groupby.AggAvg,
	"var":      groupby.AggVar,
	"stdev":    groupby.AggStdev,
	"median":   groupby.AggMedian,
	"distinct": groupby.AggDistinct,
	"concat":   groupby.AggConcat,
}

// compileGroupByClause builds a groupby.Term clause from a flat key-name
// list plus an aggregate select-list clause, e.g. keys="city" and
// aggs="sum(amount) AS total, cnt(*) AS n".
func compileGroupByClause(keysClause, aggsClause string) ([]groupby.Term, error) {
	var clause []groupby.Term
	for _, k := range strings.Split(keysClause, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		clause = append(clause, groupby.Key(k))
	}
	if strings.TrimSpace(aggsClause) == "" {
		return clause, nil
	}
	terms, err := exprlang.New().CompileTerms(aggsClause)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		agg, arg, err := aggCall(t.Tree)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", t.Name, err)
		}
		clause = append(clause, groupby.Aggregate(t.Name, agg, arg))
	}
	return clause, nil
}

// aggCall splits a CNT(*)/SUM(expr)/... call tree into its groupby.Agg kind
// and argument sub-tree (nil for count(*)).
func aggCall(t *expr.Tree) (groupby.Agg, *expr.Tree, error) {
	if t == nil || t.Kind != expr.KindCall {
		return 0, nil, fmt.Errorf("not an aggregate call")
	}
	agg, ok := aggNames[strings.ToLower(t.Func)]
	if !ok {
		return 0, nil, fmt.Errorf("unknown aggregate %q", t.Func)
	}
	if t.IsCountStar() || len(t.Args) == 0 {
		return agg, nil, nil
	}
	return agg, t.Args[0], nil
}

// passthroughProjection builds the groupbyC clause that forwards every
// groupbyA output column unchanged, the common case for a flat CLI query.
func passthroughProjection(clauseA []groupby.Term) []projector.Term {
	out := make([]projector.Term, 0, len(clauseA))
	for _, t := range clauseA {
		out = append(out, projector.Term{Name: t.Name, Expr: expr.Var(t.Name)})
	}
	return out
}
