package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"

	"record-ingest-backend/internal/model"
)

var ErrNotObject = errors.New("record must be a JSON object")

type RecordParser interface {
	Parse(line []byte) (model.Record, error)
}

type jsonRecordParser struct{}

func NewJSONRecordParser() RecordParser {
	return &jsonRecordParser{}
}

// Parse decodes one line as a JSON object. Empty lines, scalars, arrays and
// null are rejected. Numbers are kept as json.Number so stores receive the
// literal exactly as it was written.
func (p *jsonRecordParser) Parse(line []byte) (model.Record, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		log.Trace().Bytes("line", line).Msg("Line is not valid JSON")
		return nil, err
	}

	var record model.Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w, got null", ErrNotObject)
	}
	return record, nil
}
