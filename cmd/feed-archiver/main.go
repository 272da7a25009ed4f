// feed-archiver checks a feed directory for its expected files, compresses
// them into an archive directory, removes the originals once the archives are
// verified, and purges archives older than the retention age.
//
// Usage:
//
//	# Run once with config.yaml in the working directory
//	feed-archiver run
//
//	# Run with explicit paths
//	feed-archiver run --feed-dir /data/feed --archive-dir /data/archive \
//	    --files customer.csv,supplier.csv,order.csv --retention-days 7
//
//	# Show the last runs recorded in the history ledger
//	feed-archiver history --history-db /var/lib/feed-archiver/history.db
package main

func main() {
	Execute()
}
