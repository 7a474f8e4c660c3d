//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/store"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

var loggerSet = wire.NewSet(
	newLogger,
)

var storeSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "DB"),
	store.NewPebbleDB,
	wire.Bind(new(store.KVDB), new(*store.PebbleDB)),
	store.NewPebbleWitnessStore,
	wire.Bind(new(store.WitnessStore), new(*store.PebbleWitnessStore)),
)

var vdfSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Search"),
	vdf.NewGroupElementFactory,
	vdf.NewCachedGroupElementFactory,
	wire.Bind(new(vdf.FormDeriver), new(*vdf.CachedGroupElementFactory)),
	vdf.NewSearchWorker,
	wire.Bind(new(vdf.Searcher), new(*vdf.SearchWorker)),
)

func NewSearchNode(*config.Config) (*SearchNode, error) {
	panic(wire.Build(
		loggerSet,
		storeSet,
		vdfSet,
		newSearchNode,
	))
}
