// Package main provides a command-line inspector for PST-style
// container files: it walks the Node B-Tree and, given a node id, dumps
// that node's property bag.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pstdb/pst"
)

func main() {
	validation := flag.String("validation", "full", "validation policy: off, weak, or full")
	nodeID := flag.Uint64("node", 0, "node id to dump as a property bag (0 dumps the node tree only)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: pstdump [flags] <file.pst>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	policy, err := parsePolicy(*validation)
	if err != nil {
		log.Fatalf("Invalid -validation: %v", err)
	}

	file := args[0]
	f, err := os.Open(file)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close file: %v", err)
		}
	}()

	db, err := pst.Open(f, policy)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	fmt.Printf("Opened %s (large format: %v, validation: %s)\n", file, db.LargeFormat(), policy)

	if *nodeID != 0 {
		dumpPropertyBag(db, pst.NodeID(*nodeID))
		return
	}
	dumpNodeTree(db)
}

func dumpNodeTree(db *pst.Database) {
	count := 0
	err := db.WalkNodes(func(id pst.NodeID) error {
		count++
		n, err := db.LookupNode(id)
		if err != nil {
			fmt.Printf("node %d: lookup failed: %v\n", id, err)
			return nil
		}
		size, err := n.Size()
		if err != nil {
			fmt.Printf("node %d: size unavailable: %v\n", id, err)
			return nil
		}
		fmt.Printf("node %-10d parent %-10d size %d\n", n.ID(), n.ParentID(), size)
		return nil
	})
	if err != nil {
		log.Fatalf("WalkNodes failed: %v", err)
	}
	fmt.Printf("%d nodes\n", count)
}

func dumpPropertyBag(db *pst.Database, id pst.NodeID) {
	n, err := db.LookupNode(id)
	if err != nil {
		log.Fatalf("LookupNode(%d): %v", id, err)
	}

	pb, err := n.PropertyBag()
	if err != nil {
		log.Fatalf("node %d is not a property context: %v", id, err)
	}

	ids, err := pb.GetPropList()
	if err != nil {
		log.Fatalf("GetPropList: %v", err)
	}

	fmt.Printf("node %d: %d properties\n", id, len(ids))
	for _, propID := range ids {
		typ, err := pb.GetPropType(propID)
		if err != nil {
			fmt.Printf("  0x%04x: type lookup failed: %v\n", propID, err)
			continue
		}
		fmt.Printf("  0x%04x  type=0x%02x  %s\n", propID, typ, previewValue(pb, propID, typ))
	}
}

// previewValue renders a best-effort summary of a property's value
// without needing the caller to know the full MS-PST property-type
// table; fixed-width types print inline, everything else is read as a
// variable-length value and summarized by length.
func previewValue(pb *pst.PropertyBag, id, propType uint16) string {
	switch propType {
	case 0x02: // PtypInteger16
		v, err := pb.GetValue2(id)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%d", v)
	case 0x03: // PtypInteger32
		v, err := pb.GetValue4(id)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%d", v)
	case 0x14: // PtypInteger64
		v, err := pb.GetValue8(id)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%d", v)
	default:
		raw, err := pb.GetValueVariable(id)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%d bytes", len(raw))
	}
}

func parsePolicy(s string) (pst.ValidationPolicy, error) {
	switch s {
	case "off":
		return pst.ValidationOff, nil
	case "weak":
		return pst.ValidationWeak, nil
	case "full":
		return pst.ValidationFull, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want off, weak, or full)", s)
	}
}
