package output

import (
	"encoding/json"

	"flint/internal/executor"
	"flint/value"
)

type resultPayload struct {
	Success      bool                     `json:"success"`
	Columns      []string                 `json:"columns,omitempty"`
	Data         []map[string]interface{} `json:"data,omitempty"`
	Message      string                   `json:"message,omitempty"`
	AffectedRows int                      `json:"affectedRows,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

type jsonFormatter struct{}

func (jsonFormatter) Format(r executor.Result) (string, error) {
	payload := resultPayload{
		Success:      r.Success,
		Columns:      r.Columns,
		Message:      r.Message,
		AffectedRows: r.AffectedRows,
		Error:        r.Error,
	}
	if r.Rows != nil {
		payload.Data = make([]map[string]interface{}, len(r.Rows))
		for i, row := range r.Rows {
			payload.Data[i] = jsonRow(row)
		}
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func jsonRow(row map[string]value.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for k, v := range row {
		out[k] = jsonValue(v)
	}
	return out
}

func jsonValue(v value.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case value.Int:
		return v.Int()
	case value.String:
		return v.Str()
	case value.Bool:
		return v.Bool()
	case value.Timestamp:
		return v.Time()
	default:
		return nil
	}
}
