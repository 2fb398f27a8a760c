package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"rankidx/pkg/btree"
	"rankidx/pkg/common"
	"rankidx/pkg/learned"
)

func main() {
	engine := flag.String("engine", "both", "which demo to run: btree, rmi, both")
	flag.Parse()

	switch *engine {
	case "btree":
		demoBTree()
	case "rmi":
		demoRMI()
	case "both":
		demoBTree()
		fmt.Println()
		demoRMI()
	default:
		log.Fatalf("unknown engine %q", *engine)
	}
}

func demoBTree() {
	fmt.Println("--- B-Tree demo (t=3) ---")
	bt := btree.New(3)

	keys := []common.KeyType{0, 5, 7, 10, 12, 15, 18, 20, 22, 25, 28, 30, 33, 35, 40, 45, 50}
	for _, k := range keys {
		bt.Insert(k)
	}
	fmt.Printf("inserted %d keys, height=%d, nodes=%d, key slots=%d\n",
		bt.KeyCount(), bt.Height(), bt.NodeCount(), bt.TotalKeySlots())

	printTree(bt.Root, 0)

	for _, k := range []common.KeyType{15, 25, 1, 2, 100} {
		if node, i, ok := bt.Search(k); ok {
			fmt.Printf("search %3d: found in node %v at index %d\n", k, node.Keys, i)
		} else {
			fmt.Printf("search %3d: not found\n", k)
		}
	}
}

func printTree(n *btree.Node, level int) {
	kind := "internal"
	if n.Leaf {
		kind = "leaf"
	}
	fmt.Printf("%slevel %d (%s): %v\n", strings.Repeat("  ", level), level, kind, n.Keys)
	for _, child := range n.Children {
		printTree(child, level+1)
	}
}

func demoRMI() {
	fmt.Println("--- RMI demo (100 evenly spaced keys, 4 leaves) ---")
	keys := make([]common.KeyType, 100)
	for i := range keys {
		keys[i] = common.KeyType(2 * i)
	}

	idx, err := learned.Build(keys, 4)
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	for j, leaf := range idx.Leaves() {
		fmt.Printf("leaf %d: slope=%.6f intercept=%.3f max_err=%d\n",
			j, leaf.Model.Slope, leaf.Model.Intercept, leaf.MaxErr)
	}
	fmt.Printf("parameters stored: %d floats\n", idx.ParameterCount())

	for _, k := range []common.KeyType{50, 0, 198, 37, 1000} {
		pos, bound := idx.Predict(k)
		if i, ok := idx.Search(k); ok {
			fmt.Printf("search %4d: predicted=%d (±%d), actual=%d\n", k, pos, bound, i)
		} else {
			fmt.Printf("search %4d: predicted=%d (±%d), not found\n", k, pos, bound)
		}
	}
	fmt.Printf("fallbacks so far: %d\n", idx.FallbackCount())
}
