package plugin

import "fmt"

// Names of the standard plugins.
const (
	NameFileWriter = "hdf"
	NameLiveView   = "view"
	NameOffset     = "offset"
	NameUID        = "uid"
	NameSum        = "sum"
	NameBlosc      = "blosc"
	NameKafka      = "kafka"
)

// DatasetName is the dataset written by the file writer.
const DatasetName = "data"

// LiveViewBasePort is the live-view port of rank 0; each rank adds 10.
const LiveViewBasePort = 5005

// Eiger chain modes.
const (
	EigerSimple  = "Simple"
	EigerMalcolm = "Malcolm"
	EigerKafka   = "Kafka"
)

// Arc chain modes.
const (
	ModeCompression   = "compression"
	ModeNoCompression = "no_compression"
)

// FileWriter returns the HDF5 file writer plugin. With indexes set, the data
// dataset also gets frame index datasets.
func FileWriter(indexes bool) Plugin {
	return Plugin{
		Name:        NameFileWriter,
		ClassName:   "FileWriterPlugin",
		LibraryName: "Hdf5Plugin",
		Config: func(int) []map[string]any {
			entries := []map[string]any{
				{NameFileWriter: map[string]any{"dataset": DatasetName}},
			}
			if indexes {
				entries = append(entries, map[string]any{
					NameFileWriter: map[string]any{
						"dataset": map[string]any{DatasetName: map[string]any{"indexes": true}},
					},
				})
			}

			return entries
		},
	}
}

// LiveViewEndpoint returns the live-view publish address of a rank.
func LiveViewEndpoint(rank int) string {
	return fmt.Sprintf("tcp://0.0.0.0:%d", LiveViewBasePort+rank*10)
}

// LiveView returns the live-view plugin publishing on a per-rank endpoint.
func LiveView() Plugin {
	return Plugin{
		Name:      NameLiveView,
		ClassName: "LiveViewPlugin",
		Config: func(rank int) []map[string]any {
			return []map[string]any{
				{NameLiveView: map[string]any{
					"dataset_name":          DatasetName,
					"live_view_socket_addr": LiveViewEndpoint(rank),
				}},
			}
		},
	}
}

// OffsetAdjustment returns the frame offset adjustment plugin.
func OffsetAdjustment() Plugin {
	return Plugin{Name: NameOffset, ClassName: "OffsetAdjustmentPlugin"}
}

// UIDAdjustment returns the unique-id plugin; it registers its own dataset.
func UIDAdjustment() Plugin {
	return datasetPlugin(NameUID, "UIDAdjustmentPlugin")
}

// Sum returns the frame sum plugin; it registers its own dataset.
func Sum() Plugin {
	return datasetPlugin(NameSum, "SumPlugin")
}

// Blosc returns the blosc compression plugin.
func Blosc() Plugin {
	return Plugin{Name: NameBlosc, ClassName: "BloscPlugin"}
}

// Kafka returns the Kafka producer plugin sending frames to servers.
func Kafka(servers string) Plugin {
	return Plugin{
		Name:      NameKafka,
		ClassName: "KafkaProducerPlugin",
		Config: func(int) []map[string]any {
			return []map[string]any{
				{NameKafka: map[string]any{"dataset": DatasetName, "servers": servers}},
			}
		},
	}
}

// Process returns a detector decode plugin such as "eiger" or "arc".
func Process(name, className, libraryPath string) Plugin {
	return Plugin{Name: name, ClassName: className, LibraryPath: libraryPath}
}

func datasetPlugin(name, class string) Plugin {
	return Plugin{
		Name:      name,
		ClassName: class,
		Config: func(int) []map[string]any {
			return []map[string]any{
				{NameFileWriter: map[string]any{"dataset": name}},
			}
		},
	}
}
