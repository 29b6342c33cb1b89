package kafka

// Topic definitions for Kafka event streaming
const (
	// Coaching conversation events
	TopicConversationTurns = "conversations.turns"
	TopicAnalysisCompleted = "analysis.completed"
	TopicConflictsDetected = "analysis.conflicts"

	// Manuscript events
	TopicManuscriptUpdated = "manuscripts.updated"
	TopicWikiBlockUpserted = "wiki.blocks_upserted"
)
