package handlers

import (
	"encoding/json"
	"mime/multipart"

	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/web/common"
)

type UploadRequest struct {
	File  *multipart.FileHeader `form:"file" binding:"required"`
	Sheet string                `form:"sheet"`
}

type ListLoadRunsParams struct {
	Limit  int `form:"limit" binding:"min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// LoadRunDTO is the API form of a load_runs row.
type LoadRunDTO struct {
	LoadID           string               `json:"loadId"`
	Filename         string               `json:"filename"`
	Source           string               `json:"source"`
	Status           string               `json:"status"`
	Error            string               `json:"error,omitempty"`
	Rows             int                  `json:"rows"`
	Inserted         int                  `json:"inserted"`
	Skipped          int                  `json:"skipped"`
	Failed           int                  `json:"failed"`
	NewDimensionRows int                  `json:"newDimensionRows"`
	FirstDate        *common.DateOnly     `json:"firstDate,omitempty"`
	LastDate         *common.DateOnly     `json:"lastDate,omitempty"`
	RawTotal         float64              `json:"rawTotal"`
	AdjustedTotal    float64              `json:"adjustedTotal"`
	PersistedTotal   float64              `json:"persistedTotal"`
	Match            bool                 `json:"match"`
	Diagnostics      json.RawMessage      `json:"diagnostics,omitempty"`
	SkippedDetails   json.RawMessage      `json:"skippedDetails,omitempty"`
	CreatedAt        common.LocalDateTime `json:"createdAt"`
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func NewLoadRunDTO(run *model.LoadRun) LoadRunDTO {
	return LoadRunDTO{
		LoadID:           run.LoadID,
		Filename:         run.Filename,
		Source:           run.Source,
		Status:           run.Status,
		Error:            run.Error,
		Rows:             run.Rows,
		Inserted:         run.Inserted,
		Skipped:          run.Skipped,
		Failed:           run.Failed,
		NewDimensionRows: run.NewDimensionRows,
		FirstDate:        common.DateOnlyFromID(run.FirstDateID),
		LastDate:         common.DateOnlyFromID(run.LastDateID),
		RawTotal:         run.RawTotal,
		AdjustedTotal:    run.AdjustedTotal,
		PersistedTotal:   run.PersistedTotal,
		Match:            run.Match,
		Diagnostics:      rawJSON(run.Diagnostics),
		SkippedDetails:   rawJSON(run.SkippedDetails),
		CreatedAt:        common.NewLocalDateTime(run.CreatedAt),
	}
}
