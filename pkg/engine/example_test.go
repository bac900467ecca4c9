package engine_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/revision"
)

func ExampleEngine_Timeline() {
	revs := []revision.Revision{
		{Tag: "v1", Tree: []revision.Entry{
			{Path: "src/shape.js", Type: revision.KindBlob, Size: 1000},
			{Path: "src/utils.js", Type: revision.KindBlob, Size: 500},
		}},
		{Tag: "v2", Tree: []revision.Entry{
			{Path: "src/shape.js", Type: revision.KindBlob, Size: 1000},
			{Path: "src/utils.js", Type: revision.KindBlob, Size: 500},
			{Path: "src/catmull-rom.js", Type: revision.KindBlob, Size: 300},
		}},
	}

	e, err := engine.New(engine.DefaultOptions())
	if err != nil {
		panic(err)
	}
	frames, cache, err := e.Timeline(context.Background(), revs)
	if err != nil {
		panic(err)
	}
	for _, f := range frames {
		fmt.Printf("%s: %d nodes, src r=%.0f\n", f.Tag, len(f.Nodes), f.Root.Find("src").R)
	}
	fmt.Println("cached paths:", cache.Len())
	// Output:
	// v1: 4 nodes, src r=500
	// v2: 5 nodes, src r=500
	// cached paths: 5
}
