package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-ioc/app/testservice"
	"github.com/km-arc/go-ioc/framework/app"
)

type options struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "iocd",
		Short:         "Host services on the go-ioc container",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRouteListCmd(opts))
	root.AddCommand(newRegistrationsCmd(opts))
	return root
}

// bootstrap builds and boots the application with every hosted service.
func bootstrap(opts *options) (*app.Application, error) {
	application, err := app.New(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	if err := application.Register(&testservice.Provider{}); err != nil {
		_ = application.Dispose()
		return nil, err
	}
	if err := application.Boot(); err != nil {
		_ = application.Dispose()
		return nil, err
	}
	return application, nil
}

// iocd serve: start the HTTP server.
func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}
}

// iocd route:list: print all registered routes.
func newRouteListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List all registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer application.Dispose()

			routes, err := application.Router().Routes()
			if err != nil {
				return err
			}
			sort.Slice(routes, func(i, j int) bool {
				if routes[i].Pattern != routes[j].Pattern {
					return routes[i].Pattern < routes[j].Pattern
				}
				return routes[i].Method < routes[j].Method
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH")
			fmt.Fprintln(w, "------\t----")
			for _, r := range routes {
				fmt.Fprintf(w, "%s\t%s\n", r.Method, r.Pattern)
			}
			return w.Flush()
		},
	}
}

// iocd registrations: print the root container's registrations.
func newRegistrationsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "registrations",
		Short: "List the registrations of the root container",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer application.Dispose()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tSCOPE\tOWNERSHIP\tSERVICES")
			fmt.Fprintln(w, "----\t-----\t---------\t--------")
			for _, reg := range application.Registrations() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", reg.Name(), reg.Scope(), reg.Ownership(), reg.Services())
			}
			return w.Flush()
		},
	}
}
