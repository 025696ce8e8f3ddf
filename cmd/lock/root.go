package lock

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dLVB/cmd/util"
	"github.com/ValentinKolb/dLVB/lib/objlvb"
	"github.com/ValentinKolb/dLVB/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLockClient client.ILockClient
	class         uint64
	mergeSize     uint64
	mergeMtime    int64

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:                "lock",
		Short:              "Perform lock value block operations",
		PersistentPreRunE:  setupLockClient,
		PersistentPostRunE: closeLockClient,
	}

	enqueueCmd = &cobra.Command{
		Use:   "enqueue [objectID]",
		Short: "Take a reference on a resource and print its handle and value block",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnqueue,
	}

	glimpseCmd = &cobra.Command{
		Use:   "glimpse [objectID]",
		Short: "Print the current value block of a resource without holding a reference",
		Args:  cobra.ExactArgs(1),
		RunE:  runGlimpse,
	}

	releaseCmd = &cobra.Command{
		Use:   "release [handle]",
		Short: "Drop the reference behind a handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := rpcLockClient.Release(args[0]); err != nil {
				return fmt.Errorf("failed to release: %v", err)
			}
			fmt.Println("released=true")
			return nil
		},
	}

	freeCmd = &cobra.Command{
		Use:   "free [handle]",
		Short: "Drop the cached value block of a resource, the next access reads the backend again",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := rpcLockClient.Free(args[0]); err != nil {
				return fmt.Errorf("failed to free: %v", err)
			}
			fmt.Println("freed=true")
			return nil
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update [handle]",
		Short: "Refresh the value block of a resource from the backend, or merge --size/--mtime into it",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print the value block counters of the namespace",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	LockCommands.AddCommand(enqueueCmd, glimpseCmd, releaseCmd, freeCmd, updateCmd, statsCmd)
	util.SetupRPCClientFlags(LockCommands)

	for _, cmd := range []*cobra.Command{enqueueCmd, glimpseCmd} {
		cmd.Flags().Uint64Var(&class, "class", 0, util.WrapString("Resource class, 0 names a storage object, everything else an internal lock"))
	}
	updateCmd.Flags().Uint64Var(&mergeSize, "size", 0, util.WrapString("Merge this object size instead of reading the backend"))
	updateCmd.Flags().Int64Var(&mergeMtime, "mtime", 0, util.WrapString("Merge this modification time instead of reading the backend"))
}

func setupLockClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	var err error
	rpcLockClient, err = util.NewLockClient()
	return err
}

func closeLockClient(_ *cobra.Command, _ []string) error {
	return rpcLockClient.Close()
}

// formatLVB renders a value block as object attributes when it has that layout
func formatLVB(lvb []byte) string {
	if lvb == nil {
		return "none"
	}
	if v, err := objlvb.Decode(lvb); err == nil {
		return v.String()
	}
	return fmt.Sprintf("% x", lvb)
}

func runEnqueue(_ *cobra.Command, args []string) error {
	handle, lvb, err := rpcLockClient.Enqueue(args[0], class)
	if err != nil {
		return fmt.Errorf("failed to enqueue: %v", err)
	}
	fmt.Printf("handle=%s, lvb=%s\n", handle, formatLVB(lvb))
	return nil
}

func runGlimpse(_ *cobra.Command, args []string) error {
	lvb, err := rpcLockClient.Glimpse(args[0], class)
	if err != nil {
		return fmt.Errorf("failed to glimpse: %v", err)
	}
	fmt.Printf("lvb=%s\n", formatLVB(lvb))
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var lvb []byte
	var err error
	if cmd.Flags().Changed("size") || cmd.Flags().Changed("mtime") {
		lvb, err = rpcLockClient.Merge(args[0], mergeSize, mergeMtime)
	} else {
		lvb, err = rpcLockClient.Update(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to update: %v (lvb=%s)", err, formatLVB(lvb))
	}
	fmt.Printf("lvb=%s\n", formatLVB(lvb))
	return nil
}

func runStats(_ *cobra.Command, _ []string) error {
	stats, err := rpcLockClient.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %v", err)
	}
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
