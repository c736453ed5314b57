package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/km-arc/go-mvc/framework/http/validation"
)

type signup struct {
	Name     string `json:"name" validate:"required,min=2,max=10"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=18"`
	Plan     string `json:"plan,omitempty" validate:"omitempty,oneof=free pro"`
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"password_confirmation" validate:"eqfield=Password"`
}

func valid() signup {
	return signup{Name: "Alice", Email: "alice@example.com", Age: 30, Password: "s3cret", Confirm: "s3cret"}
}

// ── helpers ──────────────────────────────────────────────────────────────────

// fail asserts validation fails with message want on field.
func fail(t *testing.T, label, field, want string, body signup) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		errs := validation.Struct(&body)
		if !errs.Has() {
			t.Fatalf("expected FAIL on field %q, but validation PASSED", field)
		}
		if got := errs.First(field); got != want {
			t.Errorf("message on %q: got %q want %q (bag: %+v)", field, got, want, errs.Bag)
		}
	})
}

// ── rules ────────────────────────────────────────────────────────────────────

func TestStruct_Valid(t *testing.T) {
	body := valid()
	if errs := validation.Struct(&body); errs != nil {
		t.Errorf("expected PASS, got %+v", errs.Bag)
	}
}

func TestStruct_Rules(t *testing.T) {
	b := valid()
	b.Name = ""
	fail(t, "required", "name", "The name field is required.", b)

	b = valid()
	b.Name = "A"
	fail(t, "min string", "name", "The name must be at least 2 characters.", b)

	b = valid()
	b.Name = "Bartholomew!"
	fail(t, "max string", "name", "The name may not be greater than 10 characters.", b)

	b = valid()
	b.Email = "not-an-email"
	fail(t, "email", "email", "The email must be a valid email address.", b)

	b = valid()
	b.Age = 17
	fail(t, "gte", "age", "The age must be greater than or equal to 18.", b)

	b = valid()
	b.Plan = "gold"
	fail(t, "oneof", "plan", "The selected plan is invalid.", b)

	b = valid()
	b.Confirm = "other"
	fail(t, "eqfield", "password_confirmation", "The password_confirmation and Password must match.", b)
}

func TestStruct_NotAStruct(t *testing.T) {
	errs := validation.Struct(42)
	if errs.First("_") == "" {
		t.Errorf("expected an error under \"_\", got %+v", errs)
	}
}

// ── Errors ───────────────────────────────────────────────────────────────────

func TestErrors_JSONShape(t *testing.T) {
	b := valid()
	b.Name, b.Email = "", ""
	errs := validation.Struct(&b)

	raw, err := json.Marshal(errs)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]map[string][]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded["errors"]["name"]) != 1 || len(decoded["errors"]["email"]) != 1 {
		t.Errorf("unexpected bag: %s", raw)
	}
}

func TestErrors_NilHasNothing(t *testing.T) {
	var errs *validation.Errors
	if errs.Has() {
		t.Error("nil Errors should have nothing")
	}
}
