package main

import (
	"encoding/hex"
	"fmt"

	"github.com/joshdoman/descriptor-codec/codec"
	"github.com/spf13/cobra"
)

type encodeCommand struct {
	cmd *cobra.Command
}

func newEncodeCommand() *cobra.Command {
	cc := &encodeCommand{}
	cc.cmd = &cobra.Command{
		Use:   "encode <descriptor>",
		Short: "Encode a descriptor into its compact binary form",
		Long: `This command parses a textual output descriptor and
prints its compact binary encoding as lowercase hex. A trailing
checksum on the descriptor is verified, then dropped; it is re-derived
on decode.`,
		Example: `desccodec encode "wpkh(02f9308a019258c31049344f85f8` +
			`9d5229b531c845836f99b08601f113bce036f9)"`,
		Args: cobra.ExactArgs(1),
		RunE: cc.Execute,
	}

	return cc.cmd
}

func (c *encodeCommand) Execute(cmd *cobra.Command, args []string) error {
	data, err := codec.Encode(args[0])
	if err != nil {
		return fmt.Errorf("error encoding descriptor: %w", err)
	}

	log.Debugf("encoded %d characters into %d bytes", len(args[0]),
		len(data))

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
	return err
}
