package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type request struct {
	From   string `json:"from" validate:"required"`
	Amount *int64 `json:"amount" validate:"required"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen fields are missing.")
		{
			err := validate.Check(request{})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 0:\tShould get field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["from"]; !exists {
				t.Fatalf("\t%s\tTest 0:\tShould name the field by its json tag: %v", failed, fields)
			}
			if _, exists := fields["amount"]; !exists {
				t.Fatalf("\t%s\tTest 0:\tShould name the field by its json tag: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 0:\tShould name the fields by their json tag.", success)
		}

		t.Logf("\tTest 1:\tWhen every field is set.")
		{
			amount := int64(0)
			if err := validate.Check(request{From: "alice", Amount: &amount}); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould pass validation: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould pass validation with a zero amount.", success)
		}
	}
}
