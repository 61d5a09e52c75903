package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/monosat/api"
)

func main() {
	debug.SetGCPercent(300)
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &api.Options{}
	var (
		verbose   bool
		timeLimit int
		memLimit  int
	)
	cmd := &cobra.Command{
		Use:     "monosat [flags] file.gnf",
		Short:   "SMT solver for monotonic theories",
		Long:    "monosat solves SAT problems modulo monotonic graph, bitvector and state-machine theories.\nThe input file is a constraint transcript in the GNF dialect.",
		Args:    cobra.ExactArgs(1),
		Version: api.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := api.NewSolver(opts)
			if err != nil {
				return err
			}
			defer s.Destroy()
			if verbose {
				s.SetVerbose(os.Stderr)
				s.Logger().SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			}
			if timeLimit >= 0 {
				api.SetTimeLimit(timeLimit)
			}
			if memLimit >= 0 {
				api.SetMemoryLimit(memLimit)
			}
			res, err := s.ReadGNF(args[0])
			if err != nil {
				return err
			}
			switch res {
			case api.ResultSat:
				fmt.Println("s SATISFIABLE")
			case api.ResultUnsat:
				fmt.Println("s UNSATISFIABLE")
			default:
				fmt.Println("s INDETERMINATE")
			}
			if res == api.ResultSat && !s.LastSolutionWasOptimal() {
				fmt.Println("c solution may not be optimal (interrupted)")
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "report solving progress on stderr")
	flags.BoolVar(&opts.Preprocessing, "pre", false, "enable variable-elimination preprocessing")
	flags.Int64Var(&opts.Seed, "rnd-seed", 0, "random seed")
	flags.IntVar(&timeLimit, "time-limit", -1, "CPU time limit in seconds (negative for none)")
	flags.IntVar(&memLimit, "mem-limit", -1, "virtual memory limit in MiB (negative for none)")
	flags.StringVar(&opts.MaxFlowAlg, "maxflow", "", "max-flow algorithm (edmondskarp-adj, edmondskarp, edmondskarp-dynamic, dinitz, dinitz-linkcut, kohli-torr)")
	flags.StringVar(&opts.ComponentsAlg, "components", "", "connected components algorithm (disjoint-sets)")
	flags.StringVar(&opts.CycleAlg, "cycles", "", "cycle detection algorithm (dfs, pk)")
	flags.StringVar(&opts.MSTAlg, "mst", "", "minimum spanning tree algorithm (kruskal, prim, spira-pan)")
	flags.StringVar(&opts.ReachAlg, "reach", "", "reachability algorithm (dijkstra, bfs, dfs, cnf, ramal-reps, ramal-reps-batch, ramal-reps-batch2)")
	flags.StringVar(&opts.DistAlg, "dist", "", "distance algorithm (dijkstra, bfs, cnf, ramal-reps, ramal-reps-batch, ramal-reps-batch2)")
	flags.StringVar(&opts.ConnectAlg, "connect", "", "undirected connectivity algorithm (dijkstra, bfs, dfs, cnf, thorup)")
	flags.StringVar(&opts.AllPairsAlg, "allpairs", "", "all-pairs reachability algorithm (floyd-warshall, dijkstra)")
	flags.StringVar(&opts.UndirAllPairsAlg, "undir-allpairs", "", "undirected all-pairs algorithm (floyd-warshall, dijkstra, thorup)")
	flags.StringVar(&opts.TranscriptPath, "output", "", "record a replayable transcript to this file")
	return cmd
}
