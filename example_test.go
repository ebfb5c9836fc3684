package machine_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/machine"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/engine"
)

func ExampleBuild() {
	add, err := machine.Build(domain.Definition{
		Identity: "add",
		Sync:     true,
		Fn: func(ctx context.Context, in domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			exits.Success(in["a"].(int) + in["b"].(int))
			return nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	sum, err := add.Run(domain.Argins{"a": 1, "b": 2}).ExecSync()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sum)
	// Output: 3
}

func ExampleMachine_Call() {
	greet := machine.MustBuild(domain.Definition{
		FriendlyName: "Greet user",
		Fn: func(ctx context.Context, in domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			exits.Success(fmt.Sprintf("hello %v from %v", in["name"], meta["tenant"]))
			return nil
		},
	})

	_, err := greet.Call(
		domain.Argins{"name": "ana"},
		func(err error, greeting any) { fmt.Println(greeting) },
		domain.Metadata{"tenant": "acme"},
	)
	if err != nil {
		log.Fatal(err)
	}
	// Output: hello ana from acme
}

func ExampleMachine_Run_switch() {
	find := machine.MustBuild(domain.Definition{
		Identity: "findUser",
		Exits: map[string]domain.ExitSpec{
			"notFound": {Description: "No user with that id."},
		},
		Fn: func(ctx context.Context, in domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			if in["id"] == 1 {
				exits.Success("ana")
				return nil
			}
			exits.Exit("notFound")(nil)
			return nil
		},
	})

	for _, id := range []int{1, 2} {
		err := find.Run(domain.Argins{"id": id}).Switch(engine.Switchback{
			Success: func(user any) { fmt.Println("found", user) },
			Error:   func(err error) { fmt.Println("failed:", err) },
			Exits: map[string]func(any){
				"notFound": func(any) { fmt.Println("no user", id) },
			},
		})
		if err != nil {
			log.Fatal(err)
		}
	}
	// Output:
	// found ana
	// no user 2
}

func ExampleMachine_Run_exception() {
	find := machine.MustBuild(domain.Definition{
		Identity: "findUser",
		Exits:    map[string]domain.ExitSpec{"notFound": {Description: "No user with that id."}},
		Fn: func(ctx context.Context, in domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			exits.Exit("notFound")(nil)
			return nil
		},
	})

	_, err := find.Run(nil).Await(context.Background())

	var exc *domain.Exception
	if errors.As(err, &exc) {
		fmt.Println(exc.Code)
		fmt.Println(exc.Message)
	}
	// Output:
	// notFound
	// `findUser` triggered its `notFound` exit: No user with that id.
}
