package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeCheck() string {
	return `Estimates how much of a single submission is reachable from its entry method and returns a pass or flagged verdict.

USE WHEN:
- Screening a submission before it is graded
- Checking whether padding or leftover code makes a program mostly unreachable
- Explaining why a submission was flagged (set debug to see every class and method)

INTERPRETING RESULTS:
- verdict "flagged" means BOTH limits tripped: more unused characters than code_limit AND a used fraction below 1 - code_percent_limit
- fraction is used/total over non-whitespace characters after comments are removed
- A method is reached when "name(" appears inside a reached method; a class when "new name" does
- Every method of a comparator class (IComparer and similar) counts as used once the class is instantiated
- Matching is textual, so a name that is a substring of another can over-count usage

METRICS RETURNED:
- verdict, message, thresholds
- usage: from_classes, from_methods, from_imports, used, total, fraction
- debug only: entities (kind, name, class, start, end, seen, comparator) and sweeps`
}

func describeDirectory() string {
	return `Checks every submission file under a directory against one shared entry point.

USE WHEN:
- Grading a whole assignment folder where every submission has the same entry point
- Finding which submissions in a class set carry the most unreachable code

INTERPRETING RESULTS:
- results keep scan order; failures lists files that could not be analyzed (malformed headers, capacity exceeded)
- summary.median_fraction and p10_fraction show how typical and worst-case submissions compare
- Files matching the exclude patterns, excluded directories, and .gitignore are skipped

METRICS RETURNED:
- summary: count, flagged, failed, mean/median/p10/p90/stddev of the used fraction, mean unused characters
- results: per-file verdict and usage
- failures: path and error`
}

func describeDialects() string {
	return `Lists the dialects (marker sets) the checker knows about, including custom ones from the config file.

USE WHEN:
- Choosing the dialect argument for check_unused_code
- Confirming which file extensions are picked up by check_unused_directory

INTERPRETING RESULTS:
- default is used when neither a dialect name nor a known extension is given
- Markers are matched case-insensitively at any position, not only at line starts

METRICS RETURNED:
- default: name of the default dialect
- dialects: name, extensions, comment, class, method, comparator, and import markers`
}
