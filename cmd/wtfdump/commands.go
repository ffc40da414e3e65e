// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/webtracing/wtf/db"
	"github.com/webtracing/wtf/internal/raw"
	"github.com/webtracing/wtf/loader"
	"golang.org/x/xerrors"
)

var errNoTraces = xerrors.New("no traces loaded")

var heading = color.New(color.FgCyan, color.Bold)

func zoneHeading(w io.Writer, z *db.Zone) {
	heading.Fprintf(w, "zone %s\n", z)
}

// zones returns the zones named name, or all zones if name is empty.
func zones(d *db.Database, name string) []*db.Zone {
	var out []*db.Zone
	for _, z := range d.Zones() {
		if name == "" || z.Name() == name {
			out = append(out, z)
		}
	}
	return out
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info trace...",
		Short: "Summarize traces and their zones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, src := range d.Sources() {
				bs, ok := src.(*db.BinarySource)
				if !ok {
					continue
				}
				h, ok := bs.Header()
				if !ok {
					continue
				}
				heading.Fprintf(w, "source %s\n", bs.Name())
				fmt.Fprintf(w, "  context   %s (%s)\n", h.Context.Filename(), h.Context.URI)
				fmt.Fprintf(w, "  format    %d\n", h.FormatVersion)
				fmt.Fprintf(w, "  timebase  %d\n", h.Timebase)
				fmt.Fprintf(w, "  delay     %gms\n", bs.TimeDelay())
				fmt.Fprintf(w, "  events    %d\n", bs.EventCount())
			}
			for _, z := range d.Zones() {
				l := z.EventList()
				zoneHeading(w, z)
				fmt.Fprintf(w, "  events    %d\n", l.Len())
				fmt.Fprintf(w, "  scopes    %d (max depth %d)\n", l.ScopeCount(), l.MaximumScopeDepth())
				fmt.Fprintf(w, "  span      %.3fms .. %.3fms\n", l.FirstEventTime(), l.LastEventTime())
				fmt.Fprintf(w, "  frames    %d\n", z.FrameList().Count())
				fmt.Fprintf(w, "  marks     %d\n", z.MarkList().Count())
				fmt.Fprintf(w, "  ranges    %d\n", z.TimeRangeList().Count())
			}
			fmt.Fprintf(w, "event types %d, flows %d\n", d.EventTypes().Len(), d.Flows().Count())
			return nil
		},
	}
}

func printEvent(w io.Writer, it *db.EventIterator) {
	indent := strings.Repeat("  ", it.Depth())
	if it.IsScope() {
		if s := it.Scope(); s.Closed() {
			fmt.Fprintf(w, "%12.3f %s%s [%.3fms] %v\n", it.Time(), indent, it.Name(), s.TotalDuration(), s.Data())
			return
		}
		fmt.Fprintf(w, "%12.3f %s%s [open] %v\n", it.Time(), indent, it.Name(), it.Args())
		return
	}
	fmt.Fprintf(w, "%12.3f %s%s %v\n", it.Time(), indent, it.Name(), it.Args())
}

func (a *app) eventsCmd() *cobra.Command {
	var zone string
	var start, end float64
	var all bool
	cmd := &cobra.Command{
		Use:   "events trace...",
		Short: "List the events of each zone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, z := range zones(d, zone) {
				zoneHeading(w, z)
				n := 0
				for it := z.EventList().BeginTimeRange(start, end, true); !it.Done(); it.Next() {
					if it.Type().IsInternal() && !all {
						continue
					}
					if n == a.cfg.Limit {
						fmt.Fprintf(w, "  ... (limit %d)\n", a.cfg.Limit)
						break
					}
					printEvent(w, it)
					n++
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&zone, "zone", "", "only show the zone with this name")
	cmd.Flags().Float64Var(&start, "start", math.Inf(-1), "start time in milliseconds")
	cmd.Flags().Float64Var(&end, "end", math.Inf(1), "end time in milliseconds")
	cmd.Flags().BoolVar(&all, "internal", false, "include internal events")
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "query expression trace...",
		Short: "Filter events by type name and arguments",
		Long: `Query prints the events matching a filter expression.

An expression is a type name substring, or /regexp/flags, followed by any
number of name==value or name!=value argument predicates.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args[1:])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, z := range zones(d, zone) {
				res, err := z.Query(args[0])
				if err != nil {
					return err
				}
				zoneHeading(w, z)
				fmt.Fprintf(w, "  %d matches in %v\n", res.Count(), res.Elapsed)
				n := 0
				for it := res.Iterator(); !it.Done() && n < a.cfg.Limit; it.Next() {
					printEvent(w, it)
					n++
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&zone, "zone", "", "only query the zone with this name")
	return cmd
}

func (a *app) framesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frames trace...",
		Short: "List frames and frame time statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, z := range d.Zones() {
				frames := z.FrameList().All()
				if len(frames) == 0 {
					continue
				}
				zoneHeading(w, z)
				var total, worst float64
				for i, f := range frames {
					total += f.Duration()
					worst = max(worst, f.Duration())
					if i < a.cfg.Limit {
						fmt.Fprintf(w, "  #%-6d %12.3f %10.3fms\n", f.Number(), f.Time(), f.Duration())
					}
				}
				fmt.Fprintf(w, "  %d frames, mean %.3fms, worst %.3fms\n", len(frames), total/float64(len(frames)), worst)
			}
			return nil
		},
	}
}

func (a *app) rangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranges trace...",
		Short: "List time ranges and marks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, z := range d.Zones() {
				ranges := z.TimeRangeList().All()
				marks := z.MarkList().All()
				if len(ranges) == 0 && len(marks) == 0 {
					continue
				}
				zoneHeading(w, z)
				for _, m := range marks {
					fmt.Fprintf(w, "  mark  %12.3f %10.3fms %s\n", m.Time(), m.Duration(), m.Name())
				}
				for _, r := range ranges {
					state := fmt.Sprintf("%10.3fms", r.Duration())
					if !r.Closed() {
						state = fmt.Sprintf("%12s", "open")
					}
					fmt.Fprintf(w, "  range %12.3f %s L%d %s\n", r.Time(), state, r.Level(), r.Name())
				}
			}
			return nil
		},
	}
}

func (a *app) flowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flows trace...",
		Short: "List flows across zones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, f := range d.Flows().All() {
				if i == a.cfg.Limit {
					fmt.Fprintf(w, "... (limit %d)\n", a.cfg.Limit)
					break
				}
				from := "?"
				if b := f.BranchEvent(); b.Valid() {
					from = b.Zone.Name()
				}
				to := "open"
				if e := f.TerminateEvent(); e.Valid() {
					to = e.Zone.Name()
				}
				fmt.Fprintf(w, "flow %d parent %d: %s -> %s, %d extends %v\n", f.ID(), f.ParentID(), from, to, len(f.ExtendEvents()), f.Data())
			}
			return nil
		},
	}
}

func (a *app) rawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raw trace",
		Short: "Print the records of a trace without interpreting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in, err := loader.Decompress(f)
			if err != nil {
				return err
			}
			defer in.Close()
			r, err := raw.NewReader(in)
			if err != nil {
				return err
			}
			tw, err := raw.NewTextWriter(cmd.OutOrStdout(), r.Header())
			if err != nil {
				return err
			}
			for {
				ev, err := r.NextEvent()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if err := tw.WriteEvent(ev); err != nil {
					return err
				}
			}
		},
	}
}
