package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/storage"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

// Просмотр сохранённого мира. Сервер должен быть остановлен: BadgerDB держит блокировку каталога.
func main() {
	var (
		dataDir = flag.String("data", "data", "server data directory")
		command = flag.String("cmd", "list", "Command: list, show")
		x       = flag.Int("x", 0, "region X for list, chunk X for show")
		z       = flag.Int("z", 0, "region Z for list, chunk Z for show")
	)
	flag.Parse()

	logging.SetLogDir("")
	block.Init()

	store, err := storage.NewChunkStore(*dataDir)
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer store.Close()

	switch *command {
	case "list":
		err = listRegion(store, vec.RegionPos{X: int32(*x), Z: int32(*z)})
	case "show":
		err = showChunk(store, vec.ChunkPos{X: int32(*x), Z: int32(*z)})
	default:
		err = fmt.Errorf("unknown command: %s", *command)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func listRegion(store *storage.ChunkStore, region vec.RegionPos) error {
	chunks, err := store.RegionChunks(region)
	if err != nil {
		return err
	}
	fmt.Printf("📦 Region %s: %d chunks\n", region, len(chunks))
	for _, pos := range chunks {
		fmt.Printf("  %s\n", pos)
	}
	return nil
}

func showChunk(store *storage.ChunkStore, pos vec.ChunkPos) error {
	c, err := store.ReadChunk(pos)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("chunk %s is not saved", pos)
	}

	fmt.Printf("🧱 Chunk %s (region %s)\n", pos, pos.Region())
	fmt.Printf("  mask:  %016b\n", c.Mask())
	fmt.Printf("  bytes: %d\n", c.EncodedSize())

	counts := map[string]int{}
	for _, slot := range c.PopulatedSlots() {
		sub := c.SubChunk(slot)
		for y := 0; y < world.SubChunkSize; y++ {
			for bz := 0; bz < world.SubChunkSize; bz++ {
				for bx := 0; bx < world.SubChunkSize; bx++ {
					counts[block.Resolve(sub.Get(bx, y, bz)).Name()]++
				}
			}
		}
		fmt.Printf("  slot %2d: %4d non-air\n", slot, sub.NonAirCount())
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %d\n", name, counts[name])
	}
	return nil
}
