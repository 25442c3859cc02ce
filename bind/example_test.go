package bind_test

import (
	"context"
	"fmt"

	"github.com/ardnew/xtpl/bind"
)

func ExampleBinder_Repeat() {
	var list bind.Buffer

	items := []map[string]any{
		{"name": "alpha", "size": 3},
		{"name": "beta", "size": 12},
	}

	b := bind.New()

	err := b.Repeat(context.Background(), &list, "files", "<li>{name} ({size} KB)</li>", items)
	if err != nil {
		fmt.Println(err)
	}

	fmt.Println(list.String())
	// Output: <li>alpha (3 KB)</li><li>beta (12 KB)</li>
}

func ExampleBinder_Value() {
	b := bind.New()

	fmt.Println(b.Value("title", "", map[string]any{"title": "<h1>Home</h1>"}, false))
	// Output: Home
}
