package job

import (
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"wordcount/mapreduce/types"
)

// Summary describes one job run.
type Summary struct {
	InputDir  string
	OutputDir string

	Files  int
	Lines  int
	Tokens int
	Words  int

	PartPath string
	// Hash is the MD5 of the part file; equal inputs give equal hashes.
	Hash string

	Stage       types.Stage
	FailedStage types.Stage
	Error       string

	StartedAt  time.Time
	FinishedAt time.Time
	Durations  []StageDuration
}

// StageDuration is the time spent in one stage.
type StageDuration struct {
	Stage    types.Stage
	Duration time.Duration
}

func (s *Summary) addDuration(stage types.Stage, d time.Duration) {
	s.Durations = append(s.Durations, StageDuration{Stage: stage, Duration: d})
}

// Proto returns the summary as a protobuf Struct.
func (s *Summary) Proto() (*structpb.Struct, error) {
	durations := make([]any, 0, len(s.Durations))
	for _, d := range s.Durations {
		durations = append(durations, map[string]any{
			"stage":       d.Stage.String(),
			"duration_ms": float64(d.Duration.Microseconds()) / 1000,
		})
	}
	fields := map[string]any{
		"input_dir":   s.InputDir,
		"output_dir":  s.OutputDir,
		"files":       s.Files,
		"lines":       s.Lines,
		"tokens":      s.Tokens,
		"words":       s.Words,
		"state":       s.Stage.String(),
		"started_at":  s.StartedAt.UTC().Format(time.RFC3339Nano),
		"finished_at": s.FinishedAt.UTC().Format(time.RFC3339Nano),
		"stages":      durations,
	}
	if s.PartPath != "" {
		fields["part_path"] = s.PartPath
		fields["md5"] = s.Hash
	}
	if s.Stage == types.StageFailed {
		fields["failed_stage"] = s.FailedStage.String()
		fields["error"] = s.Error
	}
	return structpb.NewStruct(fields)
}

// MarshalJSON renders the summary as indented JSON.
func (s *Summary) MarshalJSON() ([]byte, error) {
	st, err := s.Proto()
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
}
