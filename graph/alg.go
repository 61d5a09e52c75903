package graph

import "fmt"

// Algorithm selection. Each option string is parsed once into an
// enumerated tag; the tags are frozen for the lifetime of the solver.
// Unknown values are domain errors aborting construction.
//
// The max-flow, MST, cycle and all-pairs tags select an engine, and
// several values share one: the Edmonds-Karp variants run one
// Edmonds-Karp engine, the link-cut and Kohli-Torr flows run Dinitz,
// and spira-pan runs Prim. The reach, distance, connectivity,
// components and undirected all-pairs tags are validated and stored
// but not consulted: reachability always runs BFS and distances always
// run a Dijkstra recompute. The accepted names are exactly the
// original set.

type MaxFlowAlg byte

const (
	MaxFlowEdmondsKarp MaxFlowAlg = iota
	MaxFlowEdmondsKarpAdj
	MaxFlowEdmondsKarpDynamic
	MaxFlowDinitz
	MaxFlowDinitzLinkCut
	MaxFlowKohliTorr
)

// ParseMaxFlowAlg parses a max-flow/min-cut algorithm name.
func ParseMaxFlowAlg(name string) (MaxFlowAlg, error) {
	switch name {
	case "edmondskarp-adj":
		return MaxFlowEdmondsKarpAdj, nil
	case "edmondskarp":
		return MaxFlowEdmondsKarp, nil
	case "edmondskarp-dynamic":
		return MaxFlowEdmondsKarpDynamic, nil
	case "dinitz", "dinics", "dinits":
		return MaxFlowDinitz, nil
	case "dinitz-linkcut", "dinics-linkcut", "dinits-linkcut":
		return MaxFlowDinitzLinkCut, nil
	case "kohli-torr":
		return MaxFlowKohliTorr, nil
	default:
		return 0, fmt.Errorf("unknown max-flow/min-cut algorithm %q", name)
	}
}

type ComponentsAlg byte

const (
	ComponentsDisjointSets ComponentsAlg = iota
)

// ParseComponentsAlg parses a connected-components algorithm name.
func ParseComponentsAlg(name string) (ComponentsAlg, error) {
	if name == "disjoint-sets" {
		return ComponentsDisjointSets, nil
	}
	return 0, fmt.Errorf("unknown connectivity algorithm %q", name)
}

type CycleAlg byte

const (
	CycleDFS CycleAlg = iota
	CyclePK
)

// ParseCycleAlg parses a cycle-detection algorithm name.
func ParseCycleAlg(name string) (CycleAlg, error) {
	switch name {
	case "dfs":
		return CycleDFS, nil
	case "pk":
		return CyclePK, nil
	default:
		return 0, fmt.Errorf("unknown cycle detection algorithm %q", name)
	}
}

type MSTAlg byte

const (
	MSTKruskal MSTAlg = iota
	MSTPrim
	MSTSpiraPan
)

// ParseMSTAlg parses a minimum-spanning-tree algorithm name.
func ParseMSTAlg(name string) (MSTAlg, error) {
	switch name {
	case "kruskal":
		return MSTKruskal, nil
	case "prim":
		return MSTPrim, nil
	case "spira-pan":
		return MSTSpiraPan, nil
	default:
		return 0, fmt.Errorf("unknown minimum spanning tree algorithm %q", name)
	}
}

type ReachAlg byte

const (
	ReachBFS ReachAlg = iota
	ReachDFS
	ReachDijkstra
	ReachCNF
	ReachRamalReps
	ReachRamalRepsBatch
	ReachRamalRepsBatch2
)

// ParseReachAlg parses a reachability algorithm name.
func ParseReachAlg(name string) (ReachAlg, error) {
	switch name {
	case "dijkstra":
		return ReachDijkstra, nil
	case "bfs":
		return ReachBFS, nil
	case "dfs":
		return ReachDFS, nil
	case "cnf":
		return ReachCNF, nil
	case "ramal-reps":
		return ReachRamalReps, nil
	case "ramal-reps-batch":
		return ReachRamalRepsBatch, nil
	case "ramal-reps-batch2":
		return ReachRamalRepsBatch2, nil
	default:
		return 0, fmt.Errorf("unknown reachability algorithm %q", name)
	}
}

type DistAlg byte

const (
	DistBFS DistAlg = iota
	DistDijkstra
	DistCNF
	DistRamalReps
	DistRamalRepsBatch
	DistRamalRepsBatch2
)

// ParseDistAlg parses a shortest-path algorithm name.
func ParseDistAlg(name string) (DistAlg, error) {
	switch name {
	case "dijkstra":
		return DistDijkstra, nil
	case "bfs":
		return DistBFS, nil
	case "cnf":
		return DistCNF, nil
	case "ramal-reps":
		return DistRamalReps, nil
	case "ramal-reps-batch":
		return DistRamalRepsBatch, nil
	case "ramal-reps-batch2":
		return DistRamalRepsBatch2, nil
	default:
		return 0, fmt.Errorf("unknown distance algorithm %q", name)
	}
}

type ConnectAlg byte

const (
	ConnectBFS ConnectAlg = iota
	ConnectDFS
	ConnectDijkstra
	ConnectCNF
	ConnectThorup
)

// ParseConnectAlg parses an undirected-connectivity algorithm name.
func ParseConnectAlg(name string) (ConnectAlg, error) {
	switch name {
	case "dijkstra":
		return ConnectDijkstra, nil
	case "bfs":
		return ConnectBFS, nil
	case "dfs":
		return ConnectDFS, nil
	case "cnf":
		return ConnectCNF, nil
	case "thorup":
		return ConnectThorup, nil
	default:
		return 0, fmt.Errorf("unknown undirected reachability algorithm %q", name)
	}
}

type AllPairsAlg byte

const (
	AllPairsDijkstra AllPairsAlg = iota
	AllPairsFloydWarshall
)

// ParseAllPairsAlg parses an all-pairs reachability algorithm name.
func ParseAllPairsAlg(name string) (AllPairsAlg, error) {
	switch name {
	case "floyd-warshall":
		return AllPairsFloydWarshall, nil
	case "dijkstra":
		return AllPairsDijkstra, nil
	default:
		return 0, fmt.Errorf("unknown allpairs reachability algorithm %q", name)
	}
}

type UndirAllPairsAlg byte

const (
	UndirAllPairsDijkstra UndirAllPairsAlg = iota
	UndirAllPairsFloydWarshall
	UndirAllPairsThorup
)

// ParseUndirAllPairsAlg parses an undirected all-pairs algorithm name.
func ParseUndirAllPairsAlg(name string) (UndirAllPairsAlg, error) {
	switch name {
	case "floyd-warshall":
		return UndirAllPairsFloydWarshall, nil
	case "dijkstra":
		return UndirAllPairsDijkstra, nil
	case "thorup":
		return UndirAllPairsThorup, nil
	default:
		return 0, fmt.Errorf("unknown undirected allpairs reachability algorithm %q", name)
	}
}

// AlgConfig holds the algorithm tags of one solver, selected at
// construction.
type AlgConfig struct {
	MaxFlow       MaxFlowAlg
	Components    ComponentsAlg
	Cycle         CycleAlg
	MST           MSTAlg
	Reach         ReachAlg
	Dist          DistAlg
	Connect       ConnectAlg
	AllPairs      AllPairsAlg
	UndirAllPairs UndirAllPairsAlg
}

// DefaultAlgConfig mirrors the historical defaults.
func DefaultAlgConfig() AlgConfig {
	return AlgConfig{
		MaxFlow:       MaxFlowEdmondsKarp,
		Components:    ComponentsDisjointSets,
		Cycle:         CycleDFS,
		MST:           MSTKruskal,
		Reach:         ReachBFS,
		Dist:          DistBFS,
		Connect:       ConnectBFS,
		AllPairs:      AllPairsDijkstra,
		UndirAllPairs: UndirAllPairsDijkstra,
	}
}
