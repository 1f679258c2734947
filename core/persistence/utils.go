package persistence

import (
	"time"

	"github.com/asaidimu/go-docstore/core"
)

func createEvent(
	eventType EventType,
	operation string,
	collection string,
	id string,
	input any,
	output any,
	query any,
	err *string,
	startTime time.Time,
) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	var idPtr *string
	if id != "" {
		idPtr = &id
	}

	return Event{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: collection,
		DocumentID: idPtr,
		Input:      core.CloneValue(input),
		Output:     core.CloneValue(output),
		Query:      query,
		Error:      err,
		Duration:   duration,
	}
}
