// Package videogen generates videos from text prompts with a hosted,
// asynchronous video API.
//
// # Interfaces
//
// A [Generator] submits through a primary [Backend], normally the OpenAI
// SDK ([SDKBackend]) or Google Veo ([VeoBackend]). When the primary answers
// that the operation is not supported (HTTP 404 or 501), the request is
// sent once through the secondary, normally the direct HTTPS endpoint
// ([HTTPBackend]). No other failure causes a fallback.
//
//	g := videogen.NewGenerator(
//	    videogen.NewSDKBackend(apiKey),
//	    videogen.WithSecondary(videogen.NewHTTPBackend(apiKey)),
//	    videogen.WithTimeout(5*time.Minute),
//	)
//	res, err := g.Generate(ctx, &videogen.Request{
//	    Prompt:          "Slow dolly shot through a neon-lit alley",
//	    DurationSeconds: 8,
//	    Resolution:      "1280x720",
//	    OutputPath:      "alley.mp4",
//	})
//
// # Jobs
//
// Generation is a remote job. It is polled immediately after submission
// and then at a fixed interval until it succeeds, fails or the timeout
// passes. A timed out job is left running remotely; [Generator.Status] and
// [Generator.Wait] can pick it up again with its [Job] handle.
//
// # Errors
//
// Every failure is one of [ValidationError], [ConfigError], [RemoteError],
// [GenerationFailedError], [TimeoutError] or [IOError]. [Category] names
// the class for exit codes and metrics:
//
//	if e, ok := videogen.AsRemoteError(err); ok && e.Kind == videogen.RemoteRateLimited {
//	    // back off
//	}
package videogen
