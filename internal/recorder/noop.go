package recorder

import "BRVMSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRecommendation(_ *RecommendationRecord) error { return nil }
func (n *NoopRecorder) RecordScanRun(_ *ScanRun) error { return nil }
func (n *NoopRecorder) LastLevel(_ string) (model.Level, bool, error) { return "", false, nil }
func (n *NoopRecorder) History(_ string, _ int) ([]RecommendationRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
