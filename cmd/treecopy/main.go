package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/treefile/treefile/merge"
	"github.com/treefile/treefile/tree"
)

var (
	files            []string
	out              string
	treeName         string
	treeOut          string
	chunkSize        uint64
	compression      string
	compressionLevel int
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "treecopy",
	Short: "Copy a named tree from one or more treefiles into a single output file",
	Long: `treecopy reads the same named tree from every input file, checks that
all inputs report the same row count, and writes the union of their columns
to one output tree in bounded row windows. When two inputs define the same
column name, the later file on the command line wins.`,
	Example: `treecopy --files a.tf --files b.tf --tree events --out merged.tf
treecopy --files a.tf,b.tf --tree events --tree-out events2 --out merged.tf --compression zstd`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			tree.SetLogLevel(log.DebugLevel)
			merge.SetLogLevel(log.DebugLevel)
		}

		kind, err := tree.ParseCompression(compression)
		if err != nil {
			return err
		}
		return merge.Run(merge.Config{
			Files:            files,
			Tree:             treeName,
			TreeOut:          treeOut,
			Out:              out,
			ChunkSize:        chunkSize,
			Compression:      kind,
			CompressionLevel: compressionLevel,
		})
	},
}

func init() {
	rootCmd.Flags().StringSliceVar(&files, "files", nil, "input file paths")
	rootCmd.Flags().StringVar(&out, "out", "", "output file path")
	rootCmd.Flags().StringVar(&treeName, "tree", "", "input tree name")
	rootCmd.Flags().StringVar(&treeOut, "tree-out", "", "output tree name (default: the input tree name)")
	rootCmd.Flags().Uint64Var(&chunkSize, "chunk-size", merge.DefaultChunkSize, "rows per iteration")
	rootCmd.Flags().StringVar(&compression, "compression", "zlib", "output codec: none, zlib, snappy, zstd")
	rootCmd.Flags().IntVar(&compressionLevel, "compression-level", -1, "codec level, -1 means codec default")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "debug logging")

	rootCmd.MarkFlagRequired("files")
	rootCmd.MarkFlagRequired("out")
	rootCmd.MarkFlagRequired("tree")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
