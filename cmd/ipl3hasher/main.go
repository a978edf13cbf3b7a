package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oisee/ipl3hasher/internal/apperr"
	"github.com/oisee/ipl3hasher/internal/checkpoint"
	"github.com/oisee/ipl3hasher/internal/cic"
	"github.com/oisee/ipl3hasher/internal/gpu"
	"github.com/oisee/ipl3hasher/internal/layout"
	"github.com/oisee/ipl3hasher/internal/romio"
	"github.com/oisee/ipl3hasher/internal/search"
)

func main() {
	var (
		sign           bool
		cicName        string
		yInit          int64
		yBitsStr       string
		gpuAdapter     int
		workgroupsStr  string
		checkpointPath string
		resume         bool
		gpuBinary      string
	)

	rootCmd := &cobra.Command{
		Use:   "ipl3hasher [rom]",
		Short: "Brute-force an N64 IPL3 boot-ROM checksum collision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romPath := args[0]

			entry, err := cic.Lookup(cicName)
			if err != nil {
				return err
			}

			l, err := layout.Parse(yBitsStr)
			if err != nil {
				return err
			}

			wx, wy, wz, err := parseWorkgroups(workgroupsStr)
			if err != nil {
				return err
			}

			p, err := romio.Load(romPath)
			if err != nil {
				return err
			}

			if gpuBinary != "" {
				gpu.BinaryPath = gpuBinary
			}
			orch, err := gpu.NewOrchestrator(gpuAdapter)
			if err != nil {
				return err
			}
			defer orch.Close()

			d := &search.Driver{
				P:          p,
				Seed:       entry.Seed,
				L:          l,
				Target:     entry.Target,
				Workgroups: search.Workgroups{X: wx, Y: wy, Z: wz},
				GPU:        orch,
			}

			if resume && checkpointPath != "" {
				y, completedAt, err := checkpoint.Load(checkpointPath)
				if err != nil {
					return err
				}
				fmt.Printf("Resuming from checkpoint written %s: Y=%08X\n", completedAt.Format(time.RFC3339), y)
				d.Resume(y + 1)
			} else if yInit >= 0 {
				d.Resume(uint32(yInit))
			}

			if checkpointPath != "" {
				d.Checkpoint = func(y uint32) {
					if err := checkpoint.Save(checkpointPath, y, time.Now()); err != nil {
						fmt.Fprintf(os.Stderr, "checkpoint: %v\n", err)
					}
				}
			}
			d.Progress = func(r search.Report) {
				fmt.Println(search.FormatReport(r))
			}

			hit, ok, err := d.Run()
			if err != nil {
				var verr *apperr.VerifyError
				if errors.As(err, &verr) {
					return fmt.Errorf("GPU hasher result is wrong: %08X %08X | 0x%012X", verr.Y, verr.X, verr.Observed)
				}
				return err
			}
			if !ok {
				fmt.Println("Sorry nothing")
				return nil
			}

			fmt.Printf("Found collision: Y=%08X X=%08X\n", hit.Y, hit.X)
			if sign {
				if err := romio.Sign(romPath, l, hit.Y, hit.X); err != nil {
					return err
				}
				fmt.Println("ROM has been successfully signed")
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&sign, "sign", "s", false, "Sign the ROM with found collision data")
	flags.StringVarP(&cicName, "cic", "c", "6102", "The CIC for which a checksum must be calculated")
	flags.Int64VarP(&yInit, "y-init", "y", -1, "The Y coordinate to start with")
	flags.StringVarP(&yBitsStr, "y-bits", "b", "1022[0..31]", "Y bits to use: word indices and bit ranges (e.g. 40[8..16],56[12..24])")
	flags.IntVarP(&gpuAdapter, "gpu-adapter", "d", 0, "The GPU to use (0 for first, 1 for second, etc.)")
	flags.StringVarP(&workgroupsStr, "workgroups", "w", "256,256,256", "Number of workgroups (x,y,z), total threads = x*y*z*256")
	flags.StringVar(&checkpointPath, "checkpoint", "", "Checkpoint file to periodically save progress to")
	flags.BoolVar(&resume, "resume", false, "Resume from --checkpoint instead of starting at --y-init")
	flags.StringVar(&gpuBinary, "gpu-binary", "", "Override the path to the ipl3gpu companion binary")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseWorkgroups(s string) (x, y, z uint32, err error) {
	parts := strings.Split(s, ",")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("%w: invalid --workgroups %q", apperr.ErrConfig, s)
	}
	values := [3]uint32{1, 1, 1}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: invalid --workgroups %q: %v", apperr.ErrConfig, s, err)
		}
		values[i] = uint32(v)
	}
	return values[0], values[1], values[2], nil
}
