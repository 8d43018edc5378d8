package builtins

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/sethvargo/go-retry"
)

func init() {
	register(&Builtin{Name: "PRINT", Category: CategoryConsole, Fn: printBuiltin(false)})
	register(&Builtin{Name: "PRINTLN", Category: CategoryConsole, Fn: printBuiltin(true)})
	register(&Builtin{Name: "INPUT", Category: CategoryConsole, Fn: inputBuiltin})
	register(&Builtin{Name: "READ_FILE", Category: CategoryFilesystem, Fn: readFileBuiltin})
	register(&Builtin{Name: "WRITE_FILE", Category: CategoryFilesystem, Fn: writeFileBuiltin})
	register(&Builtin{Name: "FILE_EXISTS", Category: CategoryFilesystem, Fn: fileExistsBuiltin})
	register(&Builtin{Name: "DELETE_FILE", Category: CategoryFilesystem, Fn: deleteFileBuiltin})
	register(&Builtin{Name: "HTTP_GET", Category: CategoryNetwork, Fn: httpGetBuiltin})
}

func printBuiltin(newline bool) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		out := rt.Stdout()
		for i, p := range parts {
			if i > 0 {
				fmt.Fprint(out, " ")
			}
			fmt.Fprint(out, p)
		}
		if newline {
			fmt.Fprintln(out)
		}
		return objects.NullValue, nil
	}
}

func inputBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	reader := bufio.NewReader(rt.Stdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "INPUT: %v", err)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return objects.NewString(line), nil
}

func readFileBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("READ_FILE", 1, len(args))
	}
	path, err := requireString("READ_FILE", args[0])
	if err != nil {
		return nil, err
	}
	data, ioerr := os.ReadFile(path)
	if ioerr != nil {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "READ_FILE: %v", ioerr)
	}
	return objects.NewString(string(data)), nil
}

func writeFileBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("WRITE_FILE", 2, len(args))
	}
	path, err := requireString("WRITE_FILE", args[0])
	if err != nil {
		return nil, err
	}
	content, err := requireString("WRITE_FILE", args[1])
	if err != nil {
		return nil, err
	}
	if ioerr := os.WriteFile(path, []byte(content), 0o644); ioerr != nil {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "WRITE_FILE: %v", ioerr)
	}
	return objects.NullValue, nil
}

func fileExistsBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("FILE_EXISTS", 1, len(args))
	}
	path, err := requireString("FILE_EXISTS", args[0])
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)
	return objects.NewBoolean(statErr == nil), nil
}

func deleteFileBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("DELETE_FILE", 1, len(args))
	}
	path, err := requireString("DELETE_FILE", args[0])
	if err != nil {
		return nil, err
	}
	if ioerr := os.Remove(path); ioerr != nil {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "DELETE_FILE: %v", ioerr)
	}
	return objects.NullValue, nil
}

// httpGetBuiltin fetches a URL with a bounded exponential-backoff retry
// around transient failures, returning the response body as a string.
func httpGetBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("HTTP_GET", 1, len(args))
	}
	url, err := requireString("HTTP_GET", args[0])
	if err != nil {
		return nil, err
	}

	var body []byte
	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	retryErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, httpErr := http.Get(url)
		if httpErr != nil {
			return retry.RetryableError(httpErr)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("server error: %s", resp.Status))
		}
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		body = data
		return nil
	})
	if retryErr != nil {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "HTTP_GET: %v", retryErr)
	}
	return objects.NewString(string(body)), nil
}
