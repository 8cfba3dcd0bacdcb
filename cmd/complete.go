package cmd

import (
	"context"
	"flag"
	"strings"
	"sync"

	"github.com/etnz/stockroom"
	"github.com/etnz/stockroom/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// endpoints gives the kind of the -from, -to and -in flags per command.
var endpoints = map[string]map[string]stockroom.Kind{
	"deliver": {"to": stockroom.KindLocation, "from": stockroom.KindSource},
	"move":    {"from": stockroom.KindLocation, "to": stockroom.KindLocation},
	"use":     {"from": stockroom.KindLocation, "in": stockroom.KindProject},
	"return":  {"from": stockroom.KindLocation, "to": stockroom.KindSource},
	"salvage": {"from": stockroom.KindProject, "to": stockroom.KindLocation},
	"order":   {"from": stockroom.KindSource},
	"cancel":  {"from": stockroom.KindSource},
	"ls":      {"in": stockroom.KindProject},
}

// flagKinds gives the kind of the flags naming the same kind everywhere.
var flagKinds = map[string]stockroom.Kind{
	"part":   stockroom.KindPart,
	"at":     stockroom.KindLocation,
	"parent": stockroom.KindLocation,
}

// ids predicts the ids of a kind, all kinds when empty. The inventory is
// opened on first use.
type ids struct {
	once sync.Once
	x    *stockroom.Index
}

func (p *ids) kind(kind stockroom.Kind) complete.Predictor {
	return complete.PredictFunc(func(prefix string) []string {
		p.once.Do(func() {
			if inv, err := openInventory(context.Background()); err == nil {
				p.x = inv.View().Index
			}
		})
		if p.x == nil {
			return nil
		}
		var list []string
		for _, d := range p.x.All(kind) {
			if strings.HasPrefix(d.ID, prefix) {
				list = append(list, d.ID)
			}
		}
		return list
	})
}

// Completion returns the shell completion of the stk command line.
func Completion() *complete.Command {
	var p ids
	kinds := make([]string, len(stockroom.Kinds))
	for i, k := range stockroom.Kinds {
		kinds[i] = string(k)
	}
	topics := docs.Topics()

	args := map[string]complete.Predictor{
		"ls":         p.kind(stockroom.KindLocation),
		"value":      p.kind(stockroom.KindLocation),
		"history":    p.kind(""),
		"show":       p.kind(""),
		"import-csv": predict.Files("*.csv"),
		"topic":      predict.Set(topics),
	}

	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"root":        predict.Dirs("*"),
			"definitions": predict.Dirs("*"),
			"ledger":      predict.Dirs("*"),
			"origin":      predict.Something,
			"log-level":   predict.Set{"debug", "info", "warn", "error"},
		},
	}
	for _, cmds := range Commands() {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: map[string]complete.Predictor{}, Args: args[c.Name()]}
			fs.VisitAll(func(f *flag.Flag) {
				switch k, ok := endpoints[c.Name()][f.Name]; {
				case ok:
					sub.Flags[f.Name] = p.kind(k)
				case flagKinds[f.Name] != "":
					sub.Flags[f.Name] = p.kind(flagKinds[f.Name])
				case f.Name == "kind":
					sub.Flags[f.Name] = predict.Set(kinds)
				case isBool(f):
					sub.Flags[f.Name] = predict.Nothing
				default:
					sub.Flags[f.Name] = predict.Something
				}
			})
			root.Sub[c.Name()] = sub
		}
	}
	return root
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
