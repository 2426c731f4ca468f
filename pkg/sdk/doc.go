// Package ragdex provides an embedded Go client for the ragdex RAG tool
// service backed by Redis with the search module.
//
// The client wires the vector store, the embedding and chat providers, and
// the tool registry in-process, without going through the HTTP API:
//
//	client, _ := ragdex.New(ctx,
//	    ragdex.WithRedis("localhost:6379", ""),
//	    ragdex.WithOpenAI(ragdex.OpenAIConfig{
//	        APIKey:         os.Getenv("OPENAI_API_KEY"),
//	        EmbeddingModel: "text-embedding-3-small",
//	        ChatModel:      "gpt-4o-mini",
//	    }),
//	)
//	defer client.Close()
//
//	_, _ = client.CallTool(ctx, "upsert_document", map[string]any{
//	    "id": "doc1", "text": "The sky is blue.",
//	})
//	reply, _ := client.Ask(ctx, "what color is the sky?")
package ragdex
