package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"moadeal/hotdealbot/logger"
)

// wordCount pairs a word with its frequency for the report
type wordCount struct {
	Word  string
	Count int
}

// Reports word frequencies over an exported deal-title CSV. Legacy
// exports are cp949 encoded; -encoding selects the decoder.
func main() {
	var (
		path     = flag.String("file", "titles.csv", "CSV file to analyze")
		encoding = flag.String("encoding", "cp949", "file encoding: cp949 or utf-8")
		minCount = flag.Int("min-count", 5, "only report words appearing at least this often")
		topN     = flag.Int("top", 50, "maximum number of words to report, 0 for all")
	)
	flag.Parse()

	logger.Init()
	log := logger.Default

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Str("file", *path).Err(err).Msg("Failed to open CSV file")
	}
	defer f.Close()

	var reader io.Reader = f
	switch *encoding {
	case "cp949":
		reader = transform.NewReader(f, korean.EUCKR.NewDecoder())
	case "utf-8", "utf8":
	default:
		log.Fatal().Str("encoding", *encoding).Msg("Unknown encoding")
	}

	counts, err := analyze(reader)
	if err != nil {
		log.Fatal().Str("file", *path).Err(err).Msg("Failed to parse CSV file")
	}

	frequent := frequentWords(counts, *minCount)
	if *topN > 0 && len(frequent) > *topN {
		frequent = frequent[:*topN]
	}

	fmt.Printf("%d words appear at least %d times\n", len(frequent), *minCount)
	for _, wc := range frequent {
		fmt.Printf("%6d  %s\n", wc.Count, wc.Word)
	}
}

// analyze counts lowercase whitespace-separated words across all cells
func analyze(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	counts := make(map[string]int)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, cell := range row {
			for _, word := range strings.Fields(strings.ToLower(cell)) {
				counts[word]++
			}
		}
	}
	return counts, nil
}

// frequentWords filters by minimum count and orders by count descending,
// ties by word for stable output
func frequentWords(counts map[string]int, minCount int) []wordCount {
	var out []wordCount
	for word, count := range counts {
		if count >= minCount {
			out = append(out, wordCount{Word: word, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}
