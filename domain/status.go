package domain

// Order status codes. The API exchanges the integer codes; names are for
// display and logging only.
const (
	StatusPlaced    = 1
	StatusInKitchen = 2
	StatusReady     = 3
	StatusServed    = 4
	StatusPaid      = 5
	StatusCancelled = 6
)

var statusNames = map[int]string{
	StatusPlaced:    "placed",
	StatusInKitchen: "in_kitchen",
	StatusReady:     "ready",
	StatusServed:    "served",
	StatusPaid:      "paid",
	StatusCancelled: "cancelled",
}

// allowedTransitions holds the forward edges of the order lifecycle.
// Paid and cancelled are terminal.
var allowedTransitions = map[int][]int{
	StatusPlaced:    {StatusInKitchen, StatusCancelled},
	StatusInKitchen: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {StatusPaid},
}

func StatusName(code int) string {
	return statusNames[code]
}

func ValidStatus(code int) bool {
	_, ok := statusNames[code]
	return ok
}

// CanTransition reports whether an order may move from one status code to
// another. Unknown codes never transition.
func CanTransition(from, to int) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
