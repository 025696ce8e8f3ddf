package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/cmd/lock"
	"github.com/ValentinKolb/dLVB/cmd/obj"
	"github.com/ValentinKolb/dLVB/cmd/serve"
	"github.com/ValentinKolb/dLVB/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dlvb",
		Short: "distributed lock value block cache",
		Long: fmt.Sprintf(`dLVB (v%s)

A lock value block cache for a distributed lock manager written in Go.
Each lockable object carries a small blob of attributes that is read from
the object backend once and then served to every lock holder.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dLVB",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dLVB v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(obj.ObjectCommands)
	RootCmd.AddCommand(versionCmd)

	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
