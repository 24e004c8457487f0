package admintests

import (
	"net/http"

	"github.com/stadtwache/admin-contract-tests/schema"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

// DoAttendanceTests checks the attendance roster. The roster may legitimately be empty.
func DoAttendanceTests(t *T) {
	t.Run("list is an array of complete records", func(t *T) {
		t.RequireList(t.AsAdmin(http.MethodGet, servicedef.PathAttendance, nil), schema.Attendance)
	})
}
