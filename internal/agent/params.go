package agent

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is the best-effort structured record extracted from a request.
// A zero field means "not mentioned", never "explicitly cleared".
type Params struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"due_date"`
	TaskID      FlexInt `json:"task_id"`
	Status      string  `json:"status"`
}

// FlexInt tolerates models returning ids as either JSON numbers or numeric
// strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid task id %q", s)
	}
	*f = FlexInt(n)
	return nil
}
