package validate_test

import (
	"fmt"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/validate"
)

func ExampleCheckTitle() {
	entries := []dashboard.Entry{{Link: "sales", Title: "Sales", IsMain: true}}

	fmt.Println(validate.CheckTitle("Marketing", entries).Valid)
	fmt.Println(validate.CheckTitle("Sales", entries).Message)
	fmt.Println(validate.CheckTitle("Sales & Ops", entries).Message)
	// Output:
	// true
	// title already exists
	// only letters, digits, spaces and hyphens are allowed
}

func ExampleSlug() {
	fmt.Println(validate.Slug("Sales Q1"))
	fmt.Println(validate.Slug("Überblick 2024"))
	// Output:
	// sales-q1
	// uberblick-2024
}
