package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

const ctrlC = 3

// makeRaw puts a terminal input into raw mode so single key presses arrive
// without Enter. Other readers are left alone.
var makeRaw = func(in io.Reader) (restore func(), err error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { _ = term.Restore(int(f.Fd()), old) }) }, nil
}

func (a *App) recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note",
		Long: `Record from the default microphone. Keys while recording:
  p  pause      r  resume
  s  stop and turn the recording into a note
  x  throw away what was said and start over
  c  cancel without saving`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			appendTo, _ := cmd.Flags().GetString("append")
			if folder != "" && appendTo != "" {
				return fmt.Errorf("%w: --folder and --append are exclusive", common.ErrInvalidArgument)
			}
			return a.record(cmd.Context(), cmd.OutOrStdout(), folder, appendTo)
		},
	}
	cmd.Flags().StringP("folder", "f", "", "file the new note in this folder id")
	cmd.Flags().StringP("append", "a", "", "append to this note id instead of creating one")
	return cmd
}

func (a *App) record(ctx context.Context, out io.Writer, folder, appendTo string) error {
	res, err := a.captureAudio(ctx, out)
	if err != nil || res == nil {
		return err
	}
	if res.Duration == 0 {
		fmt.Fprintln(out, "Nothing was recorded.")
		return nil
	}

	fmt.Fprintf(out, "Recorded %s. Uploading...\n", ui.Duration(res.Duration))
	target, err := a.uploader.RequestUploadTarget(ctx)
	if err != nil {
		return keptCopy(res, err)
	}
	handle, err := a.uploader.Upload(ctx, res.Blob, target)
	if err != nil {
		return keptCopy(res, err)
	}

	in := models.RecordingInput{AudioHandle: handle, Duration: res.Duration}
	if folder != "" {
		in.FolderID = &folder
	}
	if appendTo != "" {
		in.NoteIDToAppend = &appendTo
	}
	rec, err := a.backend.CreateRecording(ctx, in)
	if err != nil {
		return keptCopy(res, fmt.Errorf("failed to register recording: %w", err))
	}

	if _, err := a.follow(ctx, rec.ID, out); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(a.config.AutoCloseDelay):
	}
	return nil
}

// captureAudio runs the interactive part. A nil result without error means the
// user cancelled.
func (a *App) captureAudio(ctx context.Context, out io.Writer) (*capture.Result, error) {
	dev, release, err := a.openDevice()
	if err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	defer release()

	sess, err := capture.Open(dev, capture.Options{
		SampleRate: a.config.SampleRate,
		Channels:   a.config.Channels,
		Dir:        a.config.RecordingsDir,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.Start(ctx); err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			return nil, fmt.Errorf("cannot use the microphone, check that access is allowed: %w", err)
		}
		return nil, err
	}

	restore, err := makeRaw(a.in)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	defer restore()

	fmt.Fprint(out, "[p]ause [r]esume [s]top [x] restart [c]ancel\r\n")
	keys := readKeys(a.in)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case lv, ok := <-sess.Levels():
			if ok {
				fmt.Fprintf(out, "\r\033[K%-9s %s", sess.State(), ui.Meter(lv))
			}

		case k, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			switch k {
			case 'p':
				_ = sess.Pause()
			case 'r':
				_ = sess.Resume()
			case 'x':
				if err := sess.Reset(ctx); err != nil {
					return nil, err
				}
			case 'c', ctrlC:
				fmt.Fprint(out, "\r\033[KRecording cancelled.\r\n")
				return nil, nil
			case 's', '\r', '\n':
				res, err := sess.Stop()
				restore()
				fmt.Fprint(out, "\r\033[K")
				if res != nil && res.Path != "" {
					fmt.Fprintf(out, "Saved a copy to %s\n", res.Path)
				}
				return res, err
			}
		}
	}
}

// readKeys forwards single bytes from in until it fails. The goroutine
// stays blocked on a terminal read until the process exits.
func readKeys(in io.Reader) <-chan byte {
	ch := make(chan byte, 8)
	go func() {
		defer close(ch)
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n == 1 {
				ch <- buf[0]
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

func keptCopy(res *capture.Result, err error) error {
	if res.Path == "" {
		return err
	}
	return fmt.Errorf("%w (the recording is still at %s)", err, res.Path)
}
