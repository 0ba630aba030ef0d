// Package fakes provides test doubles for configator collaborator interfaces.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeOnePassword().
//	    WithItem("Prod", onepassword.Item{ID: "i1", Title: "api", Fields: fields}).
//	    WithReference("op://Prod/db/password", "hunter2")
//	cfg, err := configator.Load[Config](ctx, "", "Prod", "api", configator.WithClient(fake))
package fakes
