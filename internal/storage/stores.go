package storage

import "database/sql"

// Stores bundles one repository per entity family. Export and import walk
// the whole aggregate graph, so they take the bundle instead of a dozen
// separate constructor arguments.
type Stores struct {
	Corpora        CorpusStore
	LabelSets      LabelSetStore
	Labels         LabelStore
	Documents      DocumentStore
	Annotations    AnnotationStore
	StructuralSets StructuralSetStore
	Folders        FolderStore
	VersionPaths   VersionPathStore
	Relationships  RelationshipStore
	Revisions      RevisionStore
	Conversations  ConversationStore
	Messages       MessageStore
	Votes          VoteStore
	Users          UserStore
	Jobs           JobStore
}

// NewStores creates a repository bundle over one database handle.
func NewStores(db *sql.DB) *Stores {
	return &Stores{
		Corpora:        NewCorpusRepo(db),
		LabelSets:      NewLabelSetRepo(db),
		Labels:         NewLabelRepo(db),
		Documents:      NewDocumentRepo(db),
		Annotations:    NewAnnotationRepo(db),
		StructuralSets: NewStructuralSetRepo(db),
		Folders:        NewFolderRepo(db),
		VersionPaths:   NewVersionPathRepo(db),
		Relationships:  NewRelationshipRepo(db),
		Revisions:      NewRevisionRepo(db),
		Conversations:  NewConversationRepo(db),
		Messages:       NewMessageRepo(db),
		Votes:          NewVoteRepo(db),
		Users:          NewUserRepo(db),
		Jobs:           NewJobRepo(db),
	}
}
