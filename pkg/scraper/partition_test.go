package scraper

import "testing"

func TestPartitionRangeEvenSplit(t *testing.T) {
	jobs := PartitionRange(250900000, 250900029, 3, nil)

	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.WorkerID != i {
			t.Errorf("job %d has worker ID %d", i, job.WorkerID)
		}
		if job.Size() != 10 {
			t.Errorf("job %d covers %d IDs, want 10", i, job.Size())
		}
	}
}

func TestPartitionRangeLastAbsorbsRemainder(t *testing.T) {
	jobs := PartitionRange(100, 131, 3, nil) // 32 IDs

	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].Size() != 10 || jobs[1].Size() != 10 {
		t.Errorf("leading jobs cover %d and %d IDs, want 10 each", jobs[0].Size(), jobs[1].Size())
	}
	if jobs[2].Size() != 12 {
		t.Errorf("last job covers %d IDs, want 12", jobs[2].Size())
	}
}

func TestPartitionRangeCoversEveryIDOnce(t *testing.T) {
	start, end := 250900000, 250900106
	jobs := PartitionRange(start, end, 4, nil)

	seen := make(map[int]int)
	for _, job := range jobs {
		if job.StartID > job.EndID {
			t.Fatalf("job %d has inverted range [%d, %d]", job.WorkerID, job.StartID, job.EndID)
		}
		for id := job.StartID; id <= job.EndID; id++ {
			seen[id]++
		}
	}

	for id := start; id <= end; id++ {
		if seen[id] != 1 {
			t.Fatalf("ID %d covered %d times", id, seen[id])
		}
	}
	if len(seen) != end-start+1 {
		t.Errorf("covered %d IDs, want %d", len(seen), end-start+1)
	}
}

func TestPartitionRangeContiguous(t *testing.T) {
	jobs := PartitionRange(500, 599, 7, nil)

	for i := 1; i < len(jobs); i++ {
		if jobs[i].StartID != jobs[i-1].EndID+1 {
			t.Errorf("job %d starts at %d, previous ends at %d", i, jobs[i].StartID, jobs[i-1].EndID)
		}
	}
	if jobs[0].StartID != 500 || jobs[len(jobs)-1].EndID != 599 {
		t.Errorf("partition does not span the full range")
	}
}

func TestPartitionRangeMoreWorkersThanIDs(t *testing.T) {
	jobs := PartitionRange(10, 12, 8, nil)

	if len(jobs) != 3 {
		t.Fatalf("expected 3 single-ID jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.Size() != 1 {
			t.Errorf("job %d covers %d IDs, want 1", i, job.Size())
		}
	}
}

func TestPartitionRangeEmpty(t *testing.T) {
	if jobs := PartitionRange(20, 10, 4, nil); jobs != nil {
		t.Errorf("expected nil for inverted range, got %d jobs", len(jobs))
	}
}
