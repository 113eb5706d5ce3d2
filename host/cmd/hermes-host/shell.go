package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"hermes/host/board"
)

const requestTimeout = 2 * time.Second

func newShell(b *board.Board) *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt(b.Name + " > ")

	names := func([]string) []string {
		var out []string
		for _, d := range b.Devices() {
			out = append(out, d.Name)
		}
		return out
	}

	sh.AddCmd(&ishell.Cmd{
		Name:    "devices",
		Aliases: []string{"ls"},
		Help:    "list devices and their last known value",
		Func: func(c *ishell.Context) {
			for _, st := range b.States() {
				value := "-"
				if st.Known {
					value = strconv.Itoa(st.Value)
				}
				c.Printf("%3d  %-16s %-15s %s\n", st.ID, st.Name, st.Spec.Code(), value)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "handshake",
		Help: "handshake and configure all devices again",
		Func: func(c *ishell.Context) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout*4)
			defer cancel()
			if err := b.Connect(ctx); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name:      "set",
		Help:      "set <device> <value>",
		Completer: names,
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: set <device> <value>"))
				return
			}
			value, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("value %q: %w", c.Args[1], err))
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := b.Set(ctx, c.Args[0], value); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name:      "patch",
		Help:      "patch <device>: push the device settings again",
		Completer: names,
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: patch <device>"))
				return
			}
			st, err := b.State(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := b.Configure(ctx, c.Args[0], st.Spec); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name:    "quit",
		Aliases: []string{"q"},
		Help:    "exit the shell",
		Func: func(c *ishell.Context) {
			c.Stop()
		},
	})
	return sh
}
