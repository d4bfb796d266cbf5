// @title           docqa
// @version         1.0
// @description     Ask questions about uploaded documents. Answers are generated from retrieved, re-ranked chunks and streamed back.

// @contact.name    API Support
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package utils

//run redis (optional, jobs fall back to memory)
//docker run -p 6379:6379 -d redis

//run qdrant (only for VECTOR_BACKEND=qdrant)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//run the cross-encoder
//docker run -p 8081:80 ghcr.io/huggingface/text-embeddings-inference:cpu-1.5 --model-id cross-encoder/ms-marco-MiniLM-L-6-v2

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
