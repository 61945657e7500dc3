package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV reads a raw batch from CSV. The first row is the header and
// must map onto the seven column roles (see MapHeader). All cell values
// stay strings; the coercion layer deals with their actual types.
func ReadCSV(r io.Reader) (Batch, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions, err := MapHeader(header)
	if err != nil {
		return nil, err
	}

	var batch Batch
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		batch = append(batch, RawRecord{
			ActorID:     record[positions[0]],
			Date:        record[positions[1]],
			Operation:   record[positions[2]],
			TargetTable: record[positions[3]],
			TargetID:    record[positions[4]],
			FieldName:   record[positions[5]],
			Detail:      record[positions[6]],
		})
	}
	return batch, nil
}
