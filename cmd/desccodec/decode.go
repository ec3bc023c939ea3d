package main

import (
	"encoding/hex"
	"fmt"

	"github.com/joshdoman/descriptor-codec/codec"
	"github.com/spf13/cobra"
)

type decodeCommand struct {
	cmd *cobra.Command
}

func newDecodeCommand() *cobra.Command {
	cc := &decodeCommand{}
	cc.cmd = &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a binary descriptor back into text",
		Long: `This command decodes the hex encoding of a binary
descriptor and prints the reconstructed textual descriptor, including
a freshly derived checksum.`,
		Example: `desccodec decode 04252702f9308a019258c31049344f85f8` +
			`9d5229b531c845836f99b08601f113bce036f9`,
		Args: cobra.ExactArgs(1),
		RunE: cc.Execute,
	}

	return cc.cmd
}

func (c *decodeCommand) Execute(cmd *cobra.Command, args []string) error {
	data, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("error decoding hex: %w", err)
	}

	desc, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("error decoding descriptor: %w", err)
	}

	log.Debugf("decoded %d bytes into %d characters", len(data),
		len(desc))

	_, err = fmt.Fprintln(cmd.OutOrStdout(), desc)
	return err
}
