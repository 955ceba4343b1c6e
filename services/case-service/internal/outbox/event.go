package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (one topic per event type).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Topics emitted by case-service.
const (
	EventCaseFiled         = "kp.case.filed.v1"
	EventCaseStatusChanged = "kp.case.status.changed.v1"
	EventHearingScheduled  = "kp.hearing.scheduled.v1"
	EventHearingCancelled  = "kp.hearing.cancelled.v1"
)
