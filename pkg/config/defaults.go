package config

// Search defaults.
const (
	DefaultFileSizeLimit = "1MB"
	DefaultPrependDirs   = false
)

// DefaultIgnoreFiles are filename globs never considered by discovery.
var DefaultIgnoreFiles = []string{".DS_Store", "*.pyc", "*.swp"}

// DefaultCleanExts are stripped from file names, in order, to build sample names.
var DefaultCleanExts = []string{
	".gz",
	".fastq",
	".fq",
	".bam",
	".sam",
	".sra",
	"_tophat",
	"_star_aligned",
	"_fastqc",
	".hicup",
	".counts",
	"_counts",
	".txt",
	".log",
}

// Plot defaults.
const (
	DefaultFlatThreshold      = 50
	DefaultInteractiveBackend = BackendPayload
	DefaultTheme              = "light"
)

// Output defaults.
const (
	DefaultOutputDir      = "qcreport_data"
	DefaultReportFilename = "qcreport.html"
	DefaultDataFormat     = "tsv"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
