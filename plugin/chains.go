package plugin

import (
	"fmt"

	"github.com/arloliu/odinplan/types"
)

// ChainOptions parameterize the standard chains.
type ChainOptions struct {
	// Mode selects a chain variant (eiger: Simple, Malcolm or Kafka).
	// Chains without variants ignore it.
	Mode string

	// KafkaServers is the broker list for the eiger Kafka variant.
	KafkaServers string

	// LibraryPath is the install root of the detector plugin.
	LibraryPath string
}

// EigerChain builds the eiger chain for the selected mode.
//
// Variants:
//   - Simple: eiger -> hdf
//   - Malcolm: eiger -> offset -> uid -> hdf
//   - Kafka: eiger -> kafka and eiger -> hdf; KafkaServers is required
//
// The file writer writes frame indexes in every variant.
func EigerChain(opts ChainOptions) (*Chain, error) {
	eiger := Process("eiger", "EigerProcessPlugin", opts.LibraryPath)
	c := NewChain().Add(eiger, FrameReceiver)

	switch opts.Mode {
	case "", EigerSimple:
		c.Add(FileWriter(true), eiger.Name)
	case EigerMalcolm:
		c.Add(OffsetAdjustment(), eiger.Name).
			Add(UIDAdjustment(), NameOffset).
			Add(FileWriter(true), NameUID)
	case EigerKafka:
		if opts.KafkaServers == "" {
			return nil, fmt.Errorf("kafka mode requires kafka servers: %w", types.ErrInvalidConfig)
		}
		c.Add(Kafka(opts.KafkaServers), eiger.Name).
			Add(FileWriter(true), eiger.Name)
	default:
		return nil, fmt.Errorf("unknown eiger plugin mode %q: %w", opts.Mode, types.ErrInvalidConfig)
	}

	return c, nil
}

// ArcChain builds the arc chain: arc -> offset -> uid -> sum -> blosc -> hdf
// with sum -> view. The compression mode mirrors the startup wiring and the
// no_compression mode feeds the writer straight from sum.
func ArcChain(opts ChainOptions) (*Chain, error) {
	arc := Process("arc", "ArcProcessPlugin", opts.LibraryPath)
	c := NewChain().
		Add(arc, FrameReceiver).
		Add(OffsetAdjustment(), arc.Name).
		Add(UIDAdjustment(), NameOffset).
		Add(Sum(), NameUID).
		Add(LiveView(), NameSum).
		Add(Blosc(), NameSum).
		Add(FileWriter(false), NameBlosc)

	c.DeclareModes(ModeCompression, ModeNoCompression)
	for _, e := range []Edge{
		{Plugin: arc.Name, Source: FrameReceiver},
		{Plugin: NameOffset, Source: arc.Name},
		{Plugin: NameUID, Source: NameOffset},
		{Plugin: NameSum, Source: NameUID},
		{Plugin: NameLiveView, Source: NameSum},
	} {
		c.AddMode(ModeCompression, e.Plugin, e.Source)
		c.AddMode(ModeNoCompression, e.Plugin, e.Source)
	}
	c.AddMode(ModeCompression, NameBlosc, NameSum)
	c.AddMode(ModeCompression, NameFileWriter, NameBlosc)
	c.AddMode(ModeNoCompression, NameFileWriter, NameSum)

	return c, nil
}

// XspressChain builds xspress -> view -> blosc -> hdf.
func XspressChain(opts ChainOptions) (*Chain, error) {
	xsp := Process("xspress", "XspressProcessPlugin", opts.LibraryPath)

	return NewChain().
		Add(xsp, FrameReceiver).
		Add(LiveView(), xsp.Name).
		Add(Blosc(), NameLiveView).
		Add(FileWriter(false), NameBlosc), nil
}

// TristanChain builds tristan -> hdf.
func TristanChain(opts ChainOptions) (*Chain, error) {
	tr := Process("tristan", "LATRDProcessPlugin", opts.LibraryPath)

	return NewChain().
		Add(tr, FrameReceiver).
		Add(FileWriter(false), tr.Name), nil
}

// ExcaliburChain builds excalibur -> view and excalibur -> hdf.
func ExcaliburChain(opts ChainOptions) (*Chain, error) {
	ex := Process("excalibur", "ExcaliburProcessPlugin", opts.LibraryPath)

	return NewChain().
		Add(ex, FrameReceiver).
		Add(LiveView(), ex.Name).
		Add(FileWriter(false), ex.Name), nil
}

// ChainBuilder builds a standard chain.
type ChainBuilder func(opts ChainOptions) (*Chain, error)
