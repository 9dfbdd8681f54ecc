package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixRouteMonth CachePrefix = "SCHED_ROUTE_MONTH_"
)

// Time slots partition one calendar day into the two provider collection windows
const (
	TimeSlotMorning = "00-12"
	TimeSlotEvening = "12-00"
)

// TimeSlots lists the collection windows in the order they are collected
var TimeSlots = []string{TimeSlotMorning, TimeSlotEvening}

const (
	MsgInternalError       = "An unexpected error occurred"
	MsgDateOrMonthRequired = "date or year/month required"
	MsgUnauthorized        = "Unauthorized"
)
