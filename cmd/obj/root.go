package obj

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/cmd/util"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/rpc/client"
	"github.com/spf13/cobra"
	"strconv"
)

var (
	rpcObjects client.IObjectClient

	// ObjectCommands represents the object command group
	ObjectCommands = &cobra.Command{
		Use:                "obj",
		Short:              "Manage the object attributes value blocks are built from",
		PersistentPreRunE:  setupObjectClient,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error { return rpcObjects.Close() },
	}

	putCmd = &cobra.Command{
		Use:   "put [objectID] [size] [mtime]",
		Short: "Creates or replaces the attributes of an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("size must be a number: %w", err)
			}
			mtime, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("mtime must be a number: %w", err)
			}
			if err := rpcObjects.PutAttributes(args[0], backend.Attributes{Size: size, Mtime: mtime}); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete [objectID]",
		Short: "Deletes an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcObjects.DeleteObject(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}

	statCmd = &cobra.Command{
		Use:   "stat [objectID]",
		Short: "Prints the attributes of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := rpcObjects.LookupAttributes(args[0])
			if errors.Is(err, backend.ErrNotFound) {
				fmt.Println("<not found>")
				return nil
			} else if err != nil {
				return err
			}
			fmt.Printf("size=%d, mtime=%d\n", attrs.Size, attrs.Mtime)
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupRPCClientFlags(ObjectCommands)
	ObjectCommands.AddCommand(putCmd, deleteCmd, statCmd)
}

func setupObjectClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	var err error
	rpcObjects, err = util.NewObjectClient()
	return err
}
