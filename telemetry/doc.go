// Package telemetry provides OpenTelemetry tracing for task list storage.
//
// Every load and persist of a list runs inside a span. Without a configured
// provider the global tracer is a no-op, so the spans cost nothing.
//
// # Setup
//
//	provider, err := telemetry.InitProvider(ctx, telemetry.ProviderConfig{
//	    ServiceName: "todo",
//	    Endpoint:    "localhost:4317",
//	    Insecure:    true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer provider.Shutdown(ctx)
//
// # Store spans
//
//	ctx, span := tracer.StartStoreSpan(ctx, "persist", key)
//	err := kv.Put(key, payload)
//	tracer.EndStoreSpan(span, telemetry.StoreSpanOptions{Tasks: len(list)}, err)
package telemetry
