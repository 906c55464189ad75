package graph

// BatchConfig sets how many nodes or edges go into one UNWIND query
type BatchConfig struct {
	NodeBatchSize int
	EdgeBatchSize int
	// BatchesPerSecond throttles writes; zero means unthrottled
	BatchesPerSecond float64
}

// DefaultBatchConfig suits corpora of a few thousand conversations
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		NodeBatchSize:    1000,
		EdgeBatchSize:    5000,
		BatchesPerSecond: 0,
	}
}

// SmallBatchConfig uses smaller batches to reduce memory pressure on the server
func SmallBatchConfig() BatchConfig {
	return BatchConfig{
		NodeBatchSize:    200,
		EdgeBatchSize:    1000,
		BatchesPerSecond: 0,
	}
}

// LargeBatchConfig uses larger batches for full subreddit dumps
func LargeBatchConfig() BatchConfig {
	return BatchConfig{
		NodeBatchSize:    2000,
		EdgeBatchSize:    10000,
		BatchesPerSecond: 0,
	}
}

// BatchConfigForEdges picks a preset by edge count
func BatchConfigForEdges(edges int) BatchConfig {
	switch {
	case edges < 5000:
		return SmallBatchConfig()
	case edges > 500000:
		return LargeBatchConfig()
	default:
		return DefaultBatchConfig()
	}
}

func (bc BatchConfig) withDefaults() BatchConfig {
	d := DefaultBatchConfig()
	if bc.NodeBatchSize <= 0 {
		bc.NodeBatchSize = d.NodeBatchSize
	}
	if bc.EdgeBatchSize <= 0 {
		bc.EdgeBatchSize = d.EdgeBatchSize
	}
	return bc
}
