package orders

import "errors"

type Status string

// remember to add new statuses to validStatuses
const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusConfirmed:  {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

var errInvalidStatus = errors.New("invalid order status")

func ToStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validStatuses[status]; ok {
		return status, nil
	}
	return "", errInvalidStatus
}
