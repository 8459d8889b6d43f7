package storage

func NewTestMemoryLevelDBBackend() (st *LevelDBBackend, err error) {
	st = &LevelDBBackend{}
	if err = st.Init(&Config{Scheme: "memory"}); err != nil {
		return
	}

	return
}
