// Package validation checks decoded request bodies against validate struct
// tags (github.com/go-playground/validator/v10) and collects readable
// messages keyed by JSON field name.
//
//	var body struct {
//	    Name  string `json:"name"  validate:"required,min=2,max=100"`
//	    Email string `json:"email" validate:"required,email"`
//	    Age   int    `json:"age"   validate:"gte=18"`
//	}
//	if err := req.Bind(&body); err != nil { ... }
//	if errs := validation.Struct(&body); errs != nil {
//	    res.ValidationError(errs) // 422 {"errors": {"email": ["The email must be a valid email address."]}}
//	}
package validation
