package app

import (
	"encoding/json"
	"fmt"
	"io"

	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/engine/comparator"
	"go.trai.ch/zerr"
)

// resultDTO is the JSON rendering of one implementation outcome.
type resultDTO struct {
	Identity   domain.Identity `json:"identity"`
	OK         bool            `json:"ok"`
	Payload    domain.Value    `json:"payload,omitempty"`
	Error      string          `json:"error,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	DurationMS float64         `json:"durationMs"`
	Cached     bool            `json:"cached"`
	Fallback   bool            `json:"fallback"`
}

type adaptiveDTO struct {
	RunID     string      `json:"runId"`
	Type      string      `json:"type"`
	Operation string      `json:"operation"`
	Mode      domain.Mode `json:"mode"`
	Result    resultDTO   `json:"result"`
}

type parallelDTO struct {
	RunID      string                   `json:"runId"`
	Type       string                   `json:"type"`
	Operation  string                   `json:"operation"`
	Mode       domain.Mode              `json:"mode"`
	Original   resultDTO                `json:"original"`
	Candidate  resultDTO                `json:"candidate"`
	Comparison *domain.ComparisonReport `json:"comparison,omitempty"`
}

func toDTO(r domain.OperationResult) resultDTO {
	dto := resultDTO{
		Identity:   r.Identity,
		OK:         r.OK(),
		Payload:    r.Payload,
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
		Cached:     r.Cached,
		Fallback:   r.Fallback,
	}
	if r.Failure != nil {
		dto.Error = r.Failure.Message
		dto.Detail = r.Failure.Detail
	}
	return dto
}

// reportAdaptive prints the payload and returns ErrExecutionFailed when the
// final outcome is a failure.
func (a *App) reportAdaptive(runID, typeName, op string, res domain.OperationResult, asJSON bool) error {
	if asJSON {
		if err := writeJSON(a.stdout, adaptiveDTO{
			RunID:     runID,
			Type:      typeName,
			Operation: op,
			Mode:      domain.ModeAdaptive,
			Result:    toDTO(res),
		}); err != nil {
			return err
		}
	} else if res.OK() {
		if err := writeJSON(a.stdout, res.Payload); err != nil {
			return err
		}
	}

	if !res.OK() {
		a.logger.Error(res.Err())
		return domain.Annotate(domain.ErrExecutionFailed, "identity", res.Identity.String())
	}

	a.logger.Info(fmt.Sprintf("served by %s in %v%s", res.Identity, res.Duration, markers(res)))
	return nil
}

// reportParallel prints the comparison and returns ErrExecutionFailed when
// either side failed.
func (a *App) reportParallel(runID, typeName, op string, res domain.ParallelResult, asJSON bool) error {
	if asJSON {
		dto := parallelDTO{
			RunID:     runID,
			Type:      typeName,
			Operation: op,
			Mode:      domain.ModeParallel,
			Original:  toDTO(res.Original),
			Candidate: toDTO(res.Candidate),
		}
		if res.OK() {
			report := comparator.Compare(res.Original.Payload, res.Candidate.Payload)
			dto.Comparison = &report
		}
		if err := writeJSON(a.stdout, dto); err != nil {
			return err
		}
	} else if _, err := io.WriteString(a.stdout, comparator.SummarizeParallel(res)); err != nil {
		return err
	}

	if !res.OK() {
		for _, id := range domain.Identities {
			if r := res.Get(id); !r.OK() && r.Failure.Detail != "" {
				a.logger.Warn(fmt.Sprintf("%s output:\n%s", id, r.Failure.Detail))
			}
		}
		return domain.ErrExecutionFailed
	}
	return nil
}

func markers(res domain.OperationResult) string {
	var s string
	if res.Fallback {
		s += " (fallback)"
	}
	if res.Cached {
		s += " (cached)"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return zerr.Wrap(err, "failed to encode output")
	}
	return nil
}
