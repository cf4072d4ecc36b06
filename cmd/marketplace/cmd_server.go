package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/marketplace/app/routes"
	"github.com/shashiranjanraj/marketplace/internal/kernel"
	"github.com/shashiranjanraj/marketplace/internal/server"
	"github.com/shashiranjanraj/marketplace/pkg/ws"
)

// marketplace serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Start(ctx)
	},
}

// marketplace route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

func printRoutes(out io.Writer) error {
	k, err := kernel.NewHTTPKernel(routes.Deps{})
	if err != nil {
		return err
	}

	infos := k.Routes()
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

// marketplace schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "Show the maintenance tasks run by serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.Scheduler(ws.NewHub())
		if err != nil {
			return err
		}
		for _, t := range s.List() {
			fmt.Fprintln(cmd.OutOrStdout(), "  •", t)
		}
		return nil
	},
}
