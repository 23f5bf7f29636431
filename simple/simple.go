package main

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/jakecoffman/octree"
	"github.com/segmentio/encoding/json"
)

type config struct {
	LogLevel string `cli:"" env:"OCTREE_LOG_LEVEL" help:"Log level (debug|info|warning|error)."`
	Dump     bool   `cli:"" env:"OCTREE_DUMP"      help:"Print the octant hierarchy after each step."`
}

type body struct {
	name string
}

func main() {
	conf := config{
		LogLevel: logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Runs a two body pairing scenario against a pair tracking octree.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	tree := octree.NewPairOctree[body](octree.DefaultOptions())
	tree.SetPairCallback(func(ev octree.PairEvent[body]) any {
		logs.WithTag("a", ev.PayloadA.name).
			WithTag("b", ev.PayloadB.name).
			Info("pair")
		return ev.PayloadA.name + "+" + ev.PayloadB.name
	})
	tree.SetUnpairCallback(func(ev octree.PairEvent[body], token any) {
		logs.WithTag("a", ev.PayloadA.name).
			WithTag("b", ev.PayloadB.name).
			WithTag("token", token).
			Info("unpair")
	})

	first := &body{name: "first"}
	second := &body{name: "second"}

	if _, err := tree.Create(first, octree.NewAABB(octree.Vec3(0, 0, 0), octree.Vec3(1, 1, 1)), 0, true, 1, 1); err != nil {
		logs.Fatal(err)
	}
	dump(tree, conf.Dump)

	id, err := tree.Create(second, octree.NewAABB(octree.Vec3(0.5, 0.5, 0.5), octree.Vec3(1.5, 1.5, 1.5)), 0, true, 1, 1)
	if err != nil {
		logs.Fatal(err)
	}
	dump(tree, conf.Dump)

	if err := tree.Move(id, octree.NewAABB(octree.Vec3(10, 10, 10), octree.Vec3(11, 11, 11))); err != nil {
		logs.Fatal(err)
	}
	dump(tree, conf.Dump)

	results := make([]*body, 8)
	n := tree.CullPoint(octree.Vec3(0.2, 0.2, 0.2), results, nil, octree.AllMask)
	for _, b := range results[:n] {
		logs.WithTag("body", b.name).Info("point query hit")
	}

	logs.WithTag("stats", tree.Stats().String()).Info("scenario done")
}

func dump(tree *octree.PairOctree[body], enabled bool) {
	if !enabled {
		return
	}

	var b strings.Builder
	if err := tree.DebugOctants(&b); err != nil {
		logs.Warn(err)
		return
	}
	logs.WithTag("octants", b.String()).Info("octant hierarchy")
}
