package main

import (
	"bytes"
	"flag"
	"os"
	"sort"

	"moadeal/hotdealbot/logger"
	"moadeal/hotdealbot/services/store"
)

// Maintenance tool for record documents that drifted out of shape:
// renumber ordinals densely, reverse them, sort by ordinal, or shift
// every ordinal by a fixed offset.
func main() {
	var (
		path   = flag.String("file", "hotdeal.json", "record document to rewrite")
		op     = flag.String("op", "renumber", "operation: renumber, reverse, sort, offset")
		offset = flag.Int("offset", 0, "value added to every ordinal (op=offset)")
		maxNo  = flag.Int("max", 0, "highest ordinal, 0 derives it from the data (op=reverse)")
		dryRun = flag.Bool("dry-run", false, "print the result instead of rewriting the file")
	)
	flag.Parse()

	logger.Init()
	log := logger.Default

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Str("file", *path).Err(err).Msg("Failed to read record document")
	}

	records, err := store.DecodeRecords(bytes.NewReader(data))
	if err != nil {
		log.Fatal().Str("file", *path).Err(err).Msg("Failed to decode record document")
	}

	switch *op {
	case "renumber":
		for i := range records {
			records[i].No = i + 1
		}
	case "reverse":
		top := *maxNo
		if top == 0 {
			for _, r := range records {
				if r.No > top {
					top = r.No
				}
			}
		}
		for i := range records {
			records[i].No = top - records[i].No + 1
		}
	case "sort":
		sort.SliceStable(records, func(i, j int) bool { return records[i].No < records[j].No })
	case "offset":
		for i := range records {
			records[i].No += *offset
		}
	default:
		log.Fatal().Str("op", *op).Msg("Unknown operation")
	}

	out, err := store.EncodeRecords(records)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode record document")
	}

	if *dryRun {
		os.Stdout.Write(out)
		return
	}

	if err := os.WriteFile(*path, out, 0o644); err != nil {
		log.Fatal().Str("file", *path).Err(err).Msg("Failed to write record document")
	}

	log.Info().
		Str("file", *path).
		Str("op", *op).
		Int("records", len(records)).
		Msg("Record document rewritten")
}
